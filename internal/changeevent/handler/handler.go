package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"changepoint/internal/changeevent/models"
	"changepoint/internal/changeevent/service"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service defines the workflow operations the handler needs.
type Service interface {
	Create(ctx context.Context, f models.Fields, tags []models.Tag) (*models.ChangeEvent, error)
	Get(ctx context.Context, eventID id.ChangeEventID) (*models.ChangeEvent, error)
	List(ctx context.Context, q service.ListQuery) ([]*models.ChangeEvent, error)
	Update(ctx context.Context, eventID id.ChangeEventID, c models.Changes) (*models.ChangeEvent, error)
	Delete(ctx context.Context, eventID id.ChangeEventID) error
	Monthly(ctx context.Context, year, month int) ([]*models.ChangeEvent, error)
	Tags(ctx context.Context, eventID id.ChangeEventID) ([]models.Tag, error)
	NextStatuses(ctx context.Context, eventID id.ChangeEventID) ([]models.Status, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// MonthlyRoles may read the monthly approved list and its workbook.
var MonthlyRoles = []id.Role{id.RoleAdmin, id.RoleTier1Editor, id.RoleTier1Reviewer, id.RoleExecApprover}

// Register mounts the /change-events routes. Paths are spelled out in full so
// other modules can mount siblings such as /change-events/codes.
func (h *Handler) Register(r chi.Router) {
	editors := authmw.RequireRoles(h.logger, id.RoleTier1Editor, id.RoleTier2Editor)
	deleters := authmw.RequireRoles(h.logger, id.RoleAdmin, id.RoleTier1Editor, id.RoleTier2Editor)
	monthly := authmw.RequireRoles(h.logger, MonthlyRoles...)

	r.With(editors).Post("/change-events", h.handleCreate)
	r.Get("/change-events", h.handleList)
	r.With(monthly).Get("/change-events/monthly/{year}/{month}", h.handleMonthly)
	r.Get("/change-events/{id}", h.handleGet)
	r.Get("/change-events/{id}/tags", h.handleTags)
	r.Get("/change-events/{id}/transitions", h.handleTransitions)
	r.Patch("/change-events/{id}", h.handleUpdate)
	r.With(deleters).Delete("/change-events/{id}", h.handleDelete)
}

type tagRequest struct {
	ItemID  string `json:"itemId" validate:"required"`
	TagType string `json:"tagType" validate:"required,oneof=PRIMARY TAG"`
}

type createRequest struct {
	ReceiptMonth   string       `json:"receiptMonth" validate:"required,yearmonth"`
	OccurredDate   string       `json:"occurredDate" validate:"required"`
	Customer       string       `json:"customer" validate:"required,max=256"`
	Project        string       `json:"project" validate:"required,max=256"`
	ProductLine    string       `json:"productLine" validate:"required,max=256"`
	PartNumber     string       `json:"partNumber" validate:"required,max=256"`
	Factory        string       `json:"factory" validate:"required,max=256"`
	ProductionLine string       `json:"productionLine" validate:"required,max=256"`
	CompanyID      string       `json:"companyId" validate:"required"`
	ChangeType     string       `json:"changeType" validate:"required,oneof=FOUR_M NON_FOUR_M"`
	Category       string       `json:"category" validate:"required,max=256"`
	SubCategory    string       `json:"subCategory" validate:"required,max=256"`
	Description    string       `json:"description" validate:"required,max=4000"`
	Department     string       `json:"department" validate:"required,max=256"`
	ManagerID      string       `json:"managerId" validate:"required"`
	ExecutiveID    *string      `json:"executiveId"`
	Tags           []tagRequest `json:"tags" validate:"dive"`
}

type updateRequest struct {
	ReceiptMonth   *string       `json:"receiptMonth" validate:"omitempty,yearmonth"`
	OccurredDate   *string       `json:"occurredDate"`
	Customer       *string       `json:"customer" validate:"omitempty,max=256"`
	Project        *string       `json:"project" validate:"omitempty,max=256"`
	ProductLine    *string       `json:"productLine" validate:"omitempty,max=256"`
	PartNumber     *string       `json:"partNumber" validate:"omitempty,max=256"`
	Factory        *string       `json:"factory" validate:"omitempty,max=256"`
	ProductionLine *string       `json:"productionLine" validate:"omitempty,max=256"`
	CompanyID      *string       `json:"companyId"`
	ChangeType     *string       `json:"changeType" validate:"omitempty,oneof=FOUR_M NON_FOUR_M"`
	Category       *string       `json:"category" validate:"omitempty,max=256"`
	SubCategory    *string       `json:"subCategory" validate:"omitempty,max=256"`
	Description    *string       `json:"description" validate:"omitempty,max=4000"`
	Department     *string       `json:"department" validate:"omitempty,max=256"`
	ManagerID      *string       `json:"managerId"`
	ExecutiveID    *string       `json:"executiveId"`
	ReviewerID     *string       `json:"reviewerId"`
	Status         *string       `json:"status"`
	Tags           *[]tagRequest `json:"tags"`
}

type transitionsResponse struct {
	Current models.Status   `json:"current"`
	Next    []models.Status `json:"next"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decode(w, r, &req) {
		return
	}
	fields, tags, err := req.toDomain()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	e, err := h.service.Create(r.Context(), fields, tags)
	if err != nil {
		h.fail(w, r, "failed to create change event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, "failed to list change events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := ParseYearMonth(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.service.Monthly(r.Context(), year, month)
	if err != nil {
		h.fail(w, r, "failed to load monthly change events", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, "failed to get change event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	tags, err := h.service.Tags(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, "failed to load tags", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tags)
}

func (h *Handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	e, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, "failed to get change event", err)
		return
	}
	next, err := h.service.NextStatuses(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, "failed to compute transitions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transitionsResponse{Current: e.Status, Next: next})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	changes, err := req.toDomain()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	e, err := h.service.Update(r.Context(), eventID, changes)
	if err != nil {
		h.fail(w, r, "failed to update change event", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), eventID); err != nil {
		h.fail(w, r, "failed to delete change event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req createRequest) toDomain() (models.Fields, []models.Tag, error) {
	occurred, err := parseDate(req.OccurredDate)
	if err != nil {
		return models.Fields{}, nil, err
	}
	companyID, err := id.ParseCompanyID(req.CompanyID)
	if err != nil {
		return models.Fields{}, nil, err
	}
	managerID, err := id.ParseUserID(req.ManagerID)
	if err != nil {
		return models.Fields{}, nil, err
	}
	executiveID, err := optionalUser(req.ExecutiveID)
	if err != nil {
		return models.Fields{}, nil, err
	}
	tags, err := toTags(req.Tags)
	if err != nil {
		return models.Fields{}, nil, err
	}
	return models.Fields{
		ReceiptMonth:   req.ReceiptMonth,
		OccurredDate:   occurred,
		Customer:       req.Customer,
		Project:        req.Project,
		ProductLine:    req.ProductLine,
		PartNumber:     req.PartNumber,
		Factory:        req.Factory,
		ProductionLine: req.ProductionLine,
		CompanyID:      companyID,
		ChangeType:     models.ChangeType(req.ChangeType),
		Category:       req.Category,
		SubCategory:    req.SubCategory,
		Description:    req.Description,
		Department:     req.Department,
		ManagerID:      managerID,
		ExecutiveID:    executiveID,
	}, tags, nil
}

func (req updateRequest) toDomain() (models.Changes, error) {
	c := models.Changes{
		ReceiptMonth:   req.ReceiptMonth,
		Customer:       req.Customer,
		Project:        req.Project,
		ProductLine:    req.ProductLine,
		PartNumber:     req.PartNumber,
		Factory:        req.Factory,
		ProductionLine: req.ProductionLine,
		Category:       req.Category,
		SubCategory:    req.SubCategory,
		Description:    req.Description,
		Department:     req.Department,
	}
	if req.OccurredDate != nil {
		occurred, err := parseDate(*req.OccurredDate)
		if err != nil {
			return c, err
		}
		c.OccurredDate = &occurred
	}
	if req.CompanyID != nil {
		companyID, err := id.ParseCompanyID(*req.CompanyID)
		if err != nil {
			return c, err
		}
		c.CompanyID = &companyID
	}
	if req.ChangeType != nil {
		ct := models.ChangeType(*req.ChangeType)
		c.ChangeType = &ct
	}
	if req.Status != nil {
		st, err := models.ParseStatus(*req.Status)
		if err != nil {
			return c, err
		}
		c.Status = &st
	}
	var err error
	if c.ManagerID, err = optionalUser(req.ManagerID); err != nil {
		return c, err
	}
	if c.ExecutiveID, err = optionalUser(req.ExecutiveID); err != nil {
		return c, err
	}
	if c.ReviewerID, err = optionalUser(req.ReviewerID); err != nil {
		return c, err
	}
	if req.Tags != nil {
		tags, err := toTags(*req.Tags)
		if err != nil {
			return c, err
		}
		c.Tags = &tags
	}
	return c, nil
}

func toTags(in []tagRequest) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(in))
	for _, t := range in {
		itemID, err := id.ParseTaxonomyItemID(t.ItemID)
		if err != nil {
			return nil, err
		}
		tags = append(tags, models.Tag{ItemID: itemID, TagType: models.TagType(t.TagType)})
	}
	return tags, nil
}

func optionalUser(raw *string) (*id.UserID, error) {
	if raw == nil {
		return nil, nil
	}
	u, err := id.ParseUserID(*raw)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "occurredDate must be YYYY-MM-DD")
	}
	return t, nil
}

func parseListQuery(r *http.Request) (service.ListQuery, error) {
	var q service.ListQuery
	values := r.URL.Query()
	var err error
	if q.Skip, err = intParam(values.Get("skip"), "skip"); err != nil {
		return q, err
	}
	if q.Take, err = intParam(values.Get("take"), "take"); err != nil {
		return q, err
	}
	if raw := values.Get("status"); raw != "" {
		st, err := models.ParseStatus(raw)
		if err != nil {
			return q, err
		}
		q.Status = &st
	}
	if raw := values.Get("companyId"); raw != "" {
		companyID, err := id.ParseCompanyID(raw)
		if err != nil {
			return q, err
		}
		q.CompanyID = &companyID
	}
	return q, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, name+" must be an integer")
	}
	return n, nil
}

// ParseYearMonth reads the {year} and {month} URL parameters.
func ParseYearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return 0, 0, dErrors.New(dErrors.CodeBadRequest, "year must be an integer")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return 0, 0, dErrors.New(dErrors.CodeBadRequest, "month must be an integer")
	}
	return year, month, nil
}

func eventIDParam(w http.ResponseWriter, r *http.Request) (id.ChangeEventID, bool) {
	eventID, err := id.ParseChangeEventID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ChangeEventID{}, false
	}
	return eventID, true
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
