package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"changepoint/internal/inspection/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the checklist operations the handler needs.
type Service interface {
	CreateTemplate(ctx context.Context, name string, version int, active bool, drafts []models.ItemDraft) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	ActiveTemplate(ctx context.Context) (*models.Template, error)
	UpdateTemplate(ctx context.Context, templateID id.InspectionTemplateID, p models.TemplatePatch) (*models.Template, error)
	DeleteTemplate(ctx context.Context, templateID id.InspectionTemplateID) error
	CreateItem(ctx context.Context, templateID id.InspectionTemplateID, d models.ItemDraft) (*models.Item, error)
	UpdateItem(ctx context.Context, itemID id.InspectionItemID, p models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, itemID id.InspectionItemID) error
	CreateResult(ctx context.Context, eventID id.ChangeEventID, itemID id.InspectionItemID, value string) (*models.Result, error)
	GetResult(ctx context.Context, resultID id.InspectionResultID) (*models.Result, error)
	ResultsByEvent(ctx context.Context, eventID id.ChangeEventID) ([]*models.Result, error)
	UpdateResult(ctx context.Context, resultID id.InspectionResultID, value string) (*models.Result, error)
	DeleteResult(ctx context.Context, resultID id.InspectionResultID) error
	SaveResults(ctx context.Context, eventID id.ChangeEventID, entries []models.Entry) ([]*models.Result, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the /inspection routes. Template and item writes are
// admin-only; answers can be recorded by any signed-in user.
func (h *Handler) Register(r chi.Router) {
	admin := authmw.RequireRoles(h.logger, id.RoleAdmin)

	r.Route("/inspection", func(r chi.Router) {
		r.With(admin).Post("/templates", h.handleCreateTemplate)
		r.Get("/templates", h.handleListTemplates)
		r.Get("/templates/active", h.handleActiveTemplate)
		r.With(admin).Patch("/templates/{id}", h.handleUpdateTemplate)
		r.With(admin).Delete("/templates/{id}", h.handleDeleteTemplate)

		r.With(admin).Post("/templates/{id}/items", h.handleCreateItem)
		r.With(admin).Patch("/items/{id}", h.handleUpdateItem)
		r.With(admin).Delete("/items/{id}", h.handleDeleteItem)

		r.Post("/results", h.handleCreateResult)
		r.Get("/results/event/{eventId}", h.handleResultsByEvent)
		r.Post("/results/bulk/{eventId}", h.handleSaveResults)
		r.Get("/results/{id}", h.handleGetResult)
		r.Patch("/results/{id}", h.handleUpdateResult)
		r.Delete("/results/{id}", h.handleDeleteResult)
	})
}

type itemRequest struct {
	Order    int      `json:"order" validate:"gte=0"`
	Category string   `json:"category" validate:"required,max=256"`
	Question string   `json:"question" validate:"required,max=1000"`
	Type     string   `json:"type" validate:"required,oneof=TEXT TEXTAREA SELECT RADIO CHECKBOX NUMBER DATE"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

type createTemplateRequest struct {
	Name     string        `json:"name" validate:"required,max=256"`
	Version  int           `json:"version" validate:"gte=1"`
	IsActive bool          `json:"isActive"`
	Items    []itemRequest `json:"items" validate:"dive"`
}

type updateTemplateRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=256"`
	Version  *int    `json:"version" validate:"omitempty,gte=1"`
	IsActive *bool   `json:"isActive"`
}

type updateItemRequest struct {
	Order    *int      `json:"order" validate:"omitempty,gte=0"`
	Category *string   `json:"category" validate:"omitempty,max=256"`
	Question *string   `json:"question" validate:"omitempty,max=1000"`
	Type     *string   `json:"type" validate:"omitempty,oneof=TEXT TEXTAREA SELECT RADIO CHECKBOX NUMBER DATE"`
	Required *bool     `json:"required"`
	Options  *[]string `json:"options"`
}

type createResultRequest struct {
	EventID string `json:"eventId" validate:"required"`
	ItemID  string `json:"itemId" validate:"required"`
	Value   string `json:"value"`
}

type valueRequest struct {
	Value string `json:"value"`
}

type bulkRequest struct {
	Results []struct {
		ItemID string `json:"itemId" validate:"required"`
		Value  string `json:"value"`
	} `json:"results" validate:"required,min=1,dive"`
}

func (req itemRequest) toDraft() models.ItemDraft {
	return models.ItemDraft{
		Order:    req.Order,
		Category: req.Category,
		Question: req.Question,
		Type:     models.ItemType(req.Type),
		Required: req.Required,
		Options:  req.Options,
	}
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if !decode(w, r, &req) {
		return
	}
	drafts := make([]models.ItemDraft, 0, len(req.Items))
	for _, item := range req.Items {
		drafts = append(drafts, item.toDraft())
	}
	t, err := h.service.CreateTemplate(r.Context(), req.Name, req.Version, req.IsActive, drafts)
	if err != nil {
		h.fail(w, r, "failed to create inspection template", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListTemplates(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list inspection templates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleActiveTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.ActiveTemplate(r.Context())
	if err != nil {
		h.fail(w, r, "failed to load active inspection template", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := id.ParseInspectionTemplateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateTemplateRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := h.service.UpdateTemplate(r.Context(), templateID, models.TemplatePatch{
		Name:     req.Name,
		Version:  req.Version,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.fail(w, r, "failed to update inspection template", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := id.ParseInspectionTemplateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteTemplate(r.Context(), templateID); err != nil {
		h.fail(w, r, "failed to delete inspection template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	templateID, err := id.ParseInspectionTemplateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req itemRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.service.CreateItem(r.Context(), templateID, req.toDraft())
	if err != nil {
		h.fail(w, r, "failed to create inspection item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := id.ParseInspectionItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateItemRequest
	if !decode(w, r, &req) {
		return
	}
	p := models.ItemPatch{
		Order:    req.Order,
		Category: req.Category,
		Question: req.Question,
		Required: req.Required,
		Options:  req.Options,
	}
	if req.Type != nil {
		t := models.ItemType(*req.Type)
		p.Type = &t
	}
	item, err := h.service.UpdateItem(r.Context(), itemID, p)
	if err != nil {
		h.fail(w, r, "failed to update inspection item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := id.ParseInspectionItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), itemID); err != nil {
		h.fail(w, r, "failed to delete inspection item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateResult(w http.ResponseWriter, r *http.Request) {
	var req createResultRequest
	if !decode(w, r, &req) {
		return
	}
	eventID, err := id.ParseChangeEventID(req.EventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	itemID, err := id.ParseInspectionItemID(req.ItemID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.CreateResult(r.Context(), eventID, itemID, req.Value)
	if err != nil {
		h.fail(w, r, "failed to create inspection result", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := id.ParseInspectionResultID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.GetResult(r.Context(), resultID)
	if err != nil {
		h.fail(w, r, "failed to get inspection result", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleResultsByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseChangeEventID(chi.URLParam(r, "eventId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.ResultsByEvent(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, "failed to list inspection results", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpdateResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := id.ParseInspectionResultID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req valueRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.service.UpdateResult(r.Context(), resultID, req.Value)
	if err != nil {
		h.fail(w, r, "failed to update inspection result", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := id.ParseInspectionResultID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteResult(r.Context(), resultID); err != nil {
		h.fail(w, r, "failed to delete inspection result", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSaveResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := id.ParseChangeEventID(chi.URLParam(r, "eventId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}
	entries := make([]models.Entry, 0, len(req.Results))
	for _, e := range req.Results {
		itemID, err := id.ParseInspectionItemID(e.ItemID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		entries = append(entries, models.Entry{ItemID: itemID, Value: e.Value})
	}
	saved, err := h.service.SaveResults(r.Context(), eventID, entries)
	if err != nil {
		h.fail(w, r, "failed to save inspection results", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, saved)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", request.GetRequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r, dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		httputil.WriteError(w, err)
		return false
	}
	return true
}
