package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	changeeventhandler "changepoint/internal/changeevent/handler"
	"changepoint/pkg/platform/httputil"
	authmw "changepoint/pkg/platform/middleware/auth"
	request "changepoint/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Service interface {
	MonthlyWorkbook(ctx context.Context, year, month int) ([]byte, error)
}

type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register mounts the workbook download. It is readable by the same roles as
// the monthly change event list.
func (h *Handler) Register(r chi.Router) {
	r.With(authmw.RequireRoles(h.logger, changeeventhandler.MonthlyRoles...)).
		Get("/excel/monthly/{year}/{month}", h.handleMonthly)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := changeeventhandler.ParseYearMonth(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.service.MonthlyWorkbook(r.Context(), year, month)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to generate monthly workbook",
			"request_id", request.GetRequestID(r.Context()),
			"year", year,
			"month", month,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=change_points_%d_%d.xlsx", year, month))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
