package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"logvault/internal/domain/reports"
	"logvault/internal/transport/http/api"
	"logvault/internal/transport/http/middleware"
)

type Handler struct {
	Reports *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Reports: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/reports/summary.pdf", h.handleSummaryPDF)
}

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	pdfBytes, err := h.Reports.GenerateSummaryPDF(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to generate summary report", reqID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="archive-summary.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
