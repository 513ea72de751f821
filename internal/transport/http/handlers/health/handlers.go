package healthhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"logvault/internal/domain/health"
	"logvault/internal/transport/http/api"
	"logvault/internal/transport/http/middleware"
)

type Handler struct {
	Checker *health.Checker
}

func NewHandler(checker *health.Checker) *Handler {
	return &Handler{Checker: checker}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/health", func(r chi.Router) {
		r.Get("/check", h.handleCheck)
		r.Get("/report", h.handleReport)
	})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	result, err := h.Checker.PerformHealthCheck(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "health_check_failed", "health check errored", reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	report, err := h.Checker.GetDetailedHealthReport(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "health_report_failed", "health report errored", reqID)
		return
	}
	api.Success(w, report, reqID)
}
