package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"changepoint/internal/policy/models"
	id "changepoint/pkg/domain"
	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/validation"
)

// Service defines the policy operations the handler needs.
type Service interface {
	Create(ctx context.Context, d models.Draft) (*models.Setting, error)
	Update(ctx context.Context, settingID id.PolicySettingID, p models.Patch) (*models.Setting, error)
	Delete(ctx context.Context, settingID id.PolicySettingID) error
	Get(ctx context.Context, settingID id.PolicySettingID) (*models.Setting, error)
	List(ctx context.Context) ([]*models.Setting, error)
	Definitions() []models.Definition
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

type createSettingRequest struct {
	Key           string          `json:"key" validate:"required"`
	Value         json.RawMessage `json:"value" validate:"required"`
	ScopeType     string          `json:"scopeType" validate:"required,oneof=GLOBAL COMPANY"`
	ScopeID       *string         `json:"scopeId"`
	EffectiveFrom *time.Time      `json:"effectiveFrom"`
	EffectiveTo   *time.Time      `json:"effectiveTo"`
}

// updateSettingRequest keeps effectiveTo raw so an explicit null can reopen
// the window while an absent field leaves it alone.
type updateSettingRequest struct {
	Value         json.RawMessage `json:"value"`
	ScopeType     *string         `json:"scopeType" validate:"omitempty,oneof=GLOBAL COMPANY"`
	ScopeID       *string         `json:"scopeId"`
	EffectiveFrom *time.Time      `json:"effectiveFrom"`
	EffectiveTo   json.RawMessage `json:"effectiveTo"`
}

type definitionResponse struct {
	Key         models.Key `json:"key"`
	Description string     `json:"description"`
}

// Register mounts /settings for administrators. The caller must have
// applied RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Use(authmw.RequireRoles(h.logger, id.RoleAdmin))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/keys", h.handleKeys)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list settings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleKeys(w http.ResponseWriter, _ *http.Request) {
	defs := h.service.Definitions()
	out := make([]definitionResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, definitionResponse{Key: d.Key, Description: d.Description})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	settingID, err := id.ParsePolicySettingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	setting, err := h.service.Get(r.Context(), settingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, setting)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createSettingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	scopeID, err := parseScope(req.ScopeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	setting, err := h.service.Create(r.Context(), models.Draft{
		Key:           models.Key(req.Key),
		Value:         req.Value,
		ScopeType:     models.ScopeType(req.ScopeType),
		ScopeID:       scopeID,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
	})
	if err != nil {
		h.fail(w, r, "failed to create setting", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, setting)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	settingID, err := id.ParsePolicySettingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req updateSettingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	patch, err := toPatch(req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	setting, err := h.service.Update(r.Context(), settingID, patch)
	if err != nil {
		h.fail(w, r, "failed to update setting", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, setting)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	settingID, err := id.ParsePolicySettingID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), settingID); err != nil {
		h.fail(w, r, "failed to delete setting", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toPatch(req updateSettingRequest) (models.Patch, error) {
	p := models.Patch{Value: req.Value, EffectiveFrom: req.EffectiveFrom}
	if req.ScopeType != nil {
		st := models.ScopeType(*req.ScopeType)
		p.ScopeType = &st
	}
	scopeID, err := parseScope(req.ScopeID)
	if err != nil {
		return p, err
	}
	p.ScopeID = scopeID

	switch raw := bytes.TrimSpace(req.EffectiveTo); {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		p.ClearEffectiveTo = true
	default:
		var to time.Time
		if err := json.Unmarshal(raw, &to); err != nil {
			return p, dErrors.New(dErrors.CodeValidation, "effectiveTo must be an RFC 3339 timestamp")
		}
		p.EffectiveTo = &to
	}
	return p, nil
}

func parseScope(raw *string) (*id.CompanyID, error) {
	if raw == nil {
		return nil, nil
	}
	companyID, err := id.ParseCompanyID(*raw)
	if err != nil {
		return nil, err
	}
	return &companyID, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", request.GetRequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}
