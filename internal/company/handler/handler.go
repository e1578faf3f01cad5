package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"changepoint/internal/company/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/validation"
)

// Service defines the company operations the handler needs.
type Service interface {
	Create(ctx context.Context, code, name string, typ models.CompanyType) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

type createCompanyRequest struct {
	Code string `json:"code" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=256"`
	Type string `json:"type" validate:"required,oneof=TIER1 TIER2 CUSTOMER"`
}

// Register mounts /companies. The caller must have applied RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.With(authmw.RequireRoles(h.logger, id.RoleAdmin)).Post("/", h.handleCreate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list companies",
			"request_id", request.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createCompanyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	c, err := h.service.Create(ctx, req.Code, req.Name, models.CompanyType(req.Type))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create company",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}
