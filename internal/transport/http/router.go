// Package httptransport assembles the public HTTP surface: shared middleware,
// CORS and compression, health and metrics, and every module's routes under
// /api.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	dErrors "changepoint/pkg/domain-errors"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	"changepoint/pkg/platform/middleware/metadata"
	request "changepoint/pkg/platform/middleware/request"
	"changepoint/pkg/platform/middleware/requesttime"
)

// Module mounts routes that require an authenticated caller.
type Module interface {
	Register(r chi.Router)
}

// PublicModule additionally mounts routes reachable without a token.
type PublicModule interface {
	RegisterPublic(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger         *slog.Logger
	Validator      authmw.JWTValidator
	Revocation     authmw.TokenRevocationChecker
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
	CORSOrigins    []string
	HealthChecks   map[string]HealthCheck
}

type healthResponse struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter wires the middleware chain and mounts modules. Order matters:
// request IDs and the pinned request time exist before logging, and recovery
// wraps every handler.
func NewRouter(cfg Config, modules ...Module) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Recover(cfg.Logger))
	r.Use(request.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
			Error:            "method_not_allowed",
			ErrorDescription: "method not allowed",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.Gatherer != nil {
			r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
		}

		for _, m := range modules {
			if p, ok := m.(PublicModule); ok {
				p.RegisterPublic(r)
			}
		}

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(cfg.Validator, cfg.Revocation, cfg.Logger))
			for _, m := range modules {
				m.Register(r)
			}
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", request.HeaderRequestID},
		ExposedHeaders:   []string{"Content-Disposition", request.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler(gziphandler.GzipHandler(r))
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{OK: true}
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(r.Context()); err != nil {
					resp.OK = false
					resp.Checks[name] = err.Error()
					continue
				}
				resp.Checks[name] = "ok"
			}
		}
		status := http.StatusOK
		if !resp.OK {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
