package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"changepoint/internal/taxonomy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/validation"
)

// Service defines the taxonomy operations the handler needs.
type Service interface {
	CreateClass(ctx context.Context, code, name, description string) (*models.Class, error)
	CreateCategory(ctx context.Context, classID id.TaxonomyClassID, parentID *id.TaxonomyCategoryID, code, name string) (*models.Category, error)
	CreateItem(ctx context.Context, categoryID id.TaxonomyCategoryID, code, name string) (*models.Item, error)
	DeleteItem(ctx context.Context, itemID id.TaxonomyItemID) error
	ListClasses(ctx context.Context) ([]*models.Class, error)
	ListCategories(ctx context.Context, classID *id.TaxonomyClassID) ([]*models.Category, error)
	ListItems(ctx context.Context, categoryID *id.TaxonomyCategoryID) ([]*models.Item, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

type createClassRequest struct {
	Code        string `json:"code" validate:"required,max=64"`
	Name        string `json:"name" validate:"required,max=256"`
	Description string `json:"description" validate:"max=1024"`
}

type createCategoryRequest struct {
	ClassID  string  `json:"classId" validate:"required"`
	ParentID *string `json:"parentId"`
	Code     string  `json:"code" validate:"required,max=64"`
	Name     string  `json:"name" validate:"required,max=256"`
}

type createItemRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
	Code       string `json:"code" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=256"`
}

// Register mounts /change-events/codes. Categories filter by classId or
// classCode, items by categoryId. Reads are open to any authenticated
// caller; writes are ADMIN-only.
func (h *Handler) Register(r chi.Router) {
	admin := authmw.RequireRoles(h.logger, id.RoleAdmin)

	r.Get("/change-events/codes/classes", h.handleListClasses)
	r.Get("/change-events/codes/categories", h.handleListCategories)
	r.Get("/change-events/codes/items", h.handleListItems)
	r.With(admin).Post("/change-events/codes/classes", h.handleCreateClass)
	r.With(admin).Post("/change-events/codes/categories", h.handleCreateCategory)
	r.With(admin).Post("/change-events/codes/items", h.handleCreateItem)
	r.With(admin).Delete("/change-events/codes/items/{id}", h.handleDeleteItem)
}

func (h *Handler) handleListClasses(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListClasses(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list classes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var classID *id.TaxonomyClassID
	if raw := r.URL.Query().Get("classId"); raw != "" {
		parsed, err := id.ParseTaxonomyClassID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		classID = &parsed
	} else if code := r.URL.Query().Get("classCode"); code != "" {
		resolved, err := h.classIDByCode(r.Context(), code)
		if err != nil {
			h.fail(w, r, "failed to resolve class code", err)
			return
		}
		classID = &resolved
	}
	list, err := h.service.ListCategories(r.Context(), classID)
	if err != nil {
		h.fail(w, r, "failed to list categories", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	var categoryID *id.TaxonomyCategoryID
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		parsed, err := id.ParseTaxonomyCategoryID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		categoryID = &parsed
	}
	list, err := h.service.ListItems(r.Context(), categoryID)
	if err != nil {
		h.fail(w, r, "failed to list items", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreateClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.service.CreateClass(r.Context(), req.Code, req.Name, req.Description)
	if err != nil {
		h.fail(w, r, "failed to create class", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !decode(w, r, &req) {
		return
	}
	classID, err := id.ParseTaxonomyClassID(req.ClassID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var parentID *id.TaxonomyCategoryID
	if req.ParentID != nil {
		parsed, err := id.ParseTaxonomyCategoryID(*req.ParentID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		parentID = &parsed
	}
	c, err := h.service.CreateCategory(r.Context(), classID, parentID, req.Code, req.Name)
	if err != nil {
		h.fail(w, r, "failed to create category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decode(w, r, &req) {
		return
	}
	categoryID, err := id.ParseTaxonomyCategoryID(req.CategoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	i, err := h.service.CreateItem(r.Context(), categoryID, req.Code, req.Name)
	if err != nil {
		h.fail(w, r, "failed to create item", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, i)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := id.ParseTaxonomyItemID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), itemID); err != nil {
		h.fail(w, r, "failed to delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) classIDByCode(ctx context.Context, code string) (id.TaxonomyClassID, error) {
	classes, err := h.service.ListClasses(ctx)
	if err != nil {
		return id.TaxonomyClassID{}, err
	}
	for _, c := range classes {
		if c.Code == code {
			return c.ID, nil
		}
	}
	return id.TaxonomyClassID{}, dErrors.New(dErrors.CodeNotFound, "class not found")
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
