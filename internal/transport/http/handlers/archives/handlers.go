package archiveshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"logvault/internal/domain/archive"
	"logvault/internal/transport/http/api"
	"logvault/internal/transport/http/middleware"
	"logvault/internal/transport/http/shared"
)

type Handler struct {
	Service *archive.Service
}

func NewHandler(service *archive.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/archives", func(r chi.Router) {
		r.Post("/run", h.handleArchiveTable)
		r.Post("/search", h.handleSearch)
		r.Get("/summary", h.handleSummary)
		r.Get("/due", h.handleTablesDue)
		r.Get("/tables/{table}", h.handleTableArchives)
		r.Get("/tables/{table}/stats", h.handleTableStats)
		r.Post("/tables/{table}/track", h.handleTrackGrowth)
		r.Post("/{uuid}/verify", h.handleVerify)
		r.Post("/{uuid}/restore", h.handleRestore)
		r.Delete("/{uuid}", h.handleDelete)
	})
}

type archiveRequest struct {
	Table  string `json:"table"`
	Cutoff string `json:"cutoff"`
}

func (h *Handler) handleArchiveTable(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", reqID)
		return
	}
	if req.Table == "" {
		api.Fail(w, http.StatusBadRequest, "bad_request", "table is required", reqID)
		return
	}
	cutoff, err := shared.ParseDate(req.Cutoff)
	if err != nil || cutoff.IsZero() {
		api.Fail(w, http.StatusBadRequest, "bad_request", "cutoff must be RFC3339 or YYYY-MM-DD", reqID)
		return
	}

	result := h.Service.ArchiveTable(r.Context(), req.Table, cutoff)
	if !result.Success {
		api.Fail(w, http.StatusUnprocessableEntity, "archive_failed", result.Error, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var query archive.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", reqID)
		return
	}

	result := h.Service.SearchArchives(r.Context(), query)
	if !result.Success {
		api.Fail(w, http.StatusInternalServerError, "search_failed", result.Error, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	summary, err := h.Service.GetArchiveSummary(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build archive summary", reqID)
		return
	}
	api.Success(w, summary, reqID)
}

func (h *Handler) handleTablesDue(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	due, err := h.Service.GetTablesNeedingArchival(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "due_lookup_failed", "failed to list tables needing archival", reqID)
		return
	}
	api.Success(w, due, reqID)
}

func (h *Handler) handleTableArchives(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	table := chi.URLParam(r, "table")
	records, err := h.Service.GetTableArchives(r.Context(), table)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list table archives", reqID)
		return
	}
	page := shared.ParsePagination(r, 50, 500)
	api.Success(w, map[string]any{
		"total":    len(records),
		"archives": archive.Paginate(records, page.Limit, page.Offset),
	}, reqID)
}

func (h *Handler) handleTableStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	table := chi.URLParam(r, "table")
	stats, err := h.Service.GetTableStats(r.Context(), table)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to load table stats", reqID)
		return
	}
	if stats == nil {
		api.Fail(w, http.StatusNotFound, "not_tracked", "table is not tracked", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handleTrackGrowth(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	table := chi.URLParam(r, "table")
	stats, err := h.Service.TrackTableGrowth(r.Context(), table)
	if err != nil {
		if errors.Is(err, archive.ErrTableNotFound) {
			api.Fail(w, http.StatusNotFound, "table_not_found", err.Error(), reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "track_failed", "failed to track table growth", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	uuid := chi.URLParam(r, "uuid")

	ok, err := h.Service.VerifyArchive(r.Context(), uuid)
	if err != nil {
		if errors.Is(err, archive.ErrArchiveNotFound) {
			api.Fail(w, http.StatusNotFound, "archive_not_found", err.Error(), reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "verify_failed", "verification errored", reqID)
		return
	}
	api.Success(w, map[string]any{"uuid": uuid, "verified": ok}, reqID)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	uuid := chi.URLParam(r, "uuid")

	var opts archive.RestoreOptions
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON body", reqID)
			return
		}
	}

	result := h.Service.RestoreFromArchive(r.Context(), uuid, opts)
	if !result.Success {
		api.Fail(w, http.StatusUnprocessableEntity, "restore_failed", result.Error, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	uuid := chi.URLParam(r, "uuid")

	existed, err := h.Service.DeleteArchive(r.Context(), uuid)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "delete_failed", "failed to delete archive", reqID)
		return
	}
	if !existed {
		api.Fail(w, http.StatusNotFound, "archive_not_found", "archive record not found", reqID)
		return
	}
	api.Success(w, map[string]any{"uuid": uuid, "deleted": true, "deletedAt": time.Now().UTC()}, reqID)
}
