package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"adx/internal/models"
)

func newReportRouter(repo *mockReportRepository) *chi.Mux {
	handler := NewReportHandler(repo)
	r := chi.NewRouter()
	r.Get("/api/v1/reports", handler.ListReports)
	r.Get("/api/v1/reports/{runID}", handler.GetReport)
	return r
}

func TestListReportsEndpoint(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockReportRepository{
		saved: []*models.ReportRecord{
			{ID: 1, RunID: "run-a", Days: 10, FinishedAt: now},
			{ID: 2, RunID: "run-b", Days: 20, FinishedAt: now},
		},
	}
	router := newReportRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var records []*models.ReportRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestGetReportEndpoint(t *testing.T) {
	repo := &mockReportRepository{
		byRunID: map[string]*models.ReportRecord{
			"run-a": {ID: 1, RunID: "run-a", Report: json.RawMessage(`{"run_id":"run-a"}`)},
		},
	}
	router := newReportRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/run-a", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record models.ReportRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.RunID != "run-a" {
		t.Fatalf("expected run-a, got %s", record.RunID)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
