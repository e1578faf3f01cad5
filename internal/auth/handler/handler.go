package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"changepoint/internal/auth/models"
	id "changepoint/pkg/domain"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	Register(ctx context.Context, req models.Registration) (*models.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (*models.User, error)
	SetRole(ctx context.Context, userID id.UserID, role id.Role, companyID *id.CompanyID) (*models.User, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name" validate:"required,max=128"`
	CompanyID string `json:"companyId" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type setRoleRequest struct {
	Role      string  `json:"role" validate:"required"`
	CompanyID *string `json:"companyId"`
}

// RegisterPublic mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/refresh", h.handleRefresh)
}

// Register mounts endpoints that need an authenticated caller. The caller
// must have applied RequireAuth.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
	r.With(authmw.RequireRoles(h.logger, id.RoleAdmin)).Patch("/users/{id}/role", h.handleSetRole)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	pair, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	companyID, err := id.ParseCompanyID(req.CompanyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	pair, err := h.service.Register(ctx, models.Registration{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		CompanyID: companyID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pair)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.WarnContext(ctx, "token refresh failed",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req logoutRequest
	// The body is optional; an access-token-only logout sends none.
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.WarnContext(ctx, "logout failed",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u, err := h.service.Me(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req setRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, err := id.ParseRole(req.Role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var companyID *id.CompanyID
	if req.CompanyID != nil {
		parsed, err := id.ParseCompanyID(*req.CompanyID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		companyID = &parsed
	}

	u, err := h.service.SetRole(ctx, userID, role, companyID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to set role",
			"request_id", request.GetRequestID(ctx),
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
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
