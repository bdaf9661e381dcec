package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"adx/internal/interfaces"
	"adx/internal/models"
	"adx/internal/sim"
)

type mockReportRepository struct {
	saved   []*models.ReportRecord
	saveErr error
	byRunID map[string]*models.ReportRecord
}

func (m *mockReportRepository) Save(_ context.Context, record *models.ReportRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	record.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, record)
	return nil
}

func (m *mockReportRepository) GetByRunID(_ context.Context, runID string) (*models.ReportRecord, error) {
	if record, ok := m.byRunID[runID]; ok {
		return record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepository) List(_ context.Context, _ interfaces.ReportFilter) ([]*models.ReportRecord, error) {
	out := make([]*models.ReportRecord, 0, len(m.saved))
	out = append(out, m.saved...)
	return out, nil
}

func newTestRouter(repo interfaces.ReportRepository) (*chi.Mux, *sim.Manager) {
	manager := sim.NewManager()
	handler := NewSimulationHandler(manager, repo, nil)

	r := chi.NewRouter()
	r.Route("/api/v1/simulations", func(r chi.Router) {
		r.Post("/", handler.CreateSimulation)
		r.Get("/", handler.ListSimulations)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetSimulation)
			r.Post("/step", handler.StepSimulation)
			r.Post("/run", handler.RunSimulation)
			r.Get("/days", handler.GetDayReports)
			r.Route("/campaigns/{cid}", func(r chi.Router) {
				r.Get("/", handler.GetCampaign)
				r.Get("/stats", handler.GetCampaignStats)
				r.Post("/limits", handler.SetCampaignLimit)
			})
		})
	})
	return r, manager
}

func createRun(t *testing.T, router http.Handler, body string) models.SimulationStatus {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var status models.SimulationStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	return status
}

const testRunBody = `{"days":6,"agents":3,"users":40,"queries_per_user":2,"seed":42}`

func TestCreateSimulation(t *testing.T) {
	router, _ := newTestRouter(&mockReportRepository{})

	status := createRun(t, router, testRunBody)
	if status.ID == "" {
		t.Fatal("expected a run id")
	}
	if status.Day != 0 || status.Finished {
		t.Fatalf("expected fresh run at day 0, got day=%d finished=%v", status.Day, status.Finished)
	}
	// Setup allocates one campaign per agent and announces one more.
	if status.Campaigns != 4 {
		t.Fatalf("expected 4 campaigns after setup, got %d", status.Campaigns)
	}
	if status.Config.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", status.Config.Seed)
	}
}

func TestCreateSimulationRejectsBadConfig(t *testing.T) {
	router, _ := newTestRouter(&mockReportRepository{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations",
		strings.NewReader(`{"days":6,"agents":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStepSimulation(t *testing.T) {
	router, _ := newTestRouter(&mockReportRepository{})
	status := createRun(t, router, testRunBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/"+status.ID+"/step", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var after models.SimulationStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if after.Day != 1 {
		t.Fatalf("expected day 1 after one step, got %d", after.Day)
	}
}

func TestStepUnknownSimulation(t *testing.T) {
	router, _ := newTestRouter(&mockReportRepository{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/nope/step", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRunSimulationArchivesReport(t *testing.T) {
	repo := &mockReportRepository{}
	router, _ := newTestRouter(repo)
	status := createRun(t, router, testRunBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/"+status.ID+"/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var final sim.FinalReport
	if err := json.Unmarshal(rec.Body.Bytes(), &final); err != nil {
		t.Fatalf("decode final report: %v", err)
	}
	if final.RunID != status.ID {
		t.Fatalf("expected run id %s, got %s", status.ID, final.RunID)
	}
	if len(final.Agents) != 3 {
		t.Fatalf("expected 3 agent results, got %d", len(final.Agents))
	}

	if len(repo.saved) != 1 {
		t.Fatalf("expected 1 archived report, got %d", len(repo.saved))
	}
	if repo.saved[0].RunID != status.ID {
		t.Fatalf("archived wrong run: %s", repo.saved[0].RunID)
	}

	// A second run request on the finished run must conflict and must
	// not archive again.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/simulations/"+status.ID+"/run", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on finished run, got %d", rec.Code)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected no second archive, got %d", len(repo.saved))
	}
}

func TestGetCampaignStatsRange(t *testing.T) {
	router, manager := newTestRouter(&mockReportRepository{})
	status := createRun(t, router, testRunBody)

	s, ok := manager.Get(status.ID)
	if !ok {
		t.Fatal("run not registered")
	}
	for i := 0; i < 4; i++ {
		if _, err := s.StepDay(); err != nil {
			t.Fatalf("StepDay: %v", err)
		}
	}

	path := fmt.Sprintf("/api/v1/simulations/%s/campaigns/1/stats?from=1&to=3", status.ID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		CampaignID int `json:"campaign_id"`
		From       int `json:"from"`
		To         int `json:"to"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if payload.CampaignID != 1 || payload.From != 1 || payload.To != 3 {
		t.Fatalf("unexpected stats envelope: %+v", payload)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/simulations/"+status.ID+"/campaigns/1/stats?from=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad from, got %d", rec.Code)
	}
}

func TestSetCampaignLimit(t *testing.T) {
	router, _ := newTestRouter(&mockReportRepository{})
	status := createRun(t, router, testRunBody)

	body := `{"adnet":"adnet-1","budget_limit":100,"impression_limit":50}`
	path := "/api/v1/simulations/" + status.ID + "/campaigns/1/limits"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	// Naming a non-winning network is also accepted; the message is
	// dropped inside the campaign.
	body = `{"adnet":"someone-else","budget_limit":100,"impression_limit":50}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for non-winner, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"adnet":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing adnet, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/v1/simulations/"+status.ID+"/campaigns/999/limits", strings.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown campaign, got %d", rec.Code)
	}
}
