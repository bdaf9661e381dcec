package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adx/internal/interfaces"
)

// ReportHandler serves archived reports of completed runs.
type ReportHandler struct {
	reports interfaces.ReportRepository
}

func NewReportHandler(reports interfaces.ReportRepository) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListReports handles GET /api/v1/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	filter := interfaces.ReportFilter{Limit: 50}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > 500 {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid offset")
			return
		}
		filter.Offset = offset
	}

	records, err := h.reports.List(r.Context(), filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "db_error", "Failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetReport handles GET /api/v1/reports/{runID}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	record, err := h.reports.GetByRunID(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, sql.ErrNoRows) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Report not found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "db_error", "Failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, record)
}
