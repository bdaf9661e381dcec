package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"adx/internal/demand"
	"adx/internal/export"
	"adx/internal/interfaces"
	"adx/internal/models"
	"adx/internal/sim"
)

// SimulationHandler exposes the run lifecycle: create, step, run to
// completion, and inspect campaigns. Completed runs are archived to the
// report store and optionally exported to S3.
type SimulationHandler struct {
	manager   *sim.Manager
	reports   interfaces.ReportRepository
	exporter  *export.S3Exporter
	validator *validator.Validate
}

func NewSimulationHandler(manager *sim.Manager, reports interfaces.ReportRepository, exporter *export.S3Exporter) *SimulationHandler {
	return &SimulationHandler{
		manager:   manager,
		reports:   reports,
		exporter:  exporter,
		validator: validator.New(),
	}
}

// CreateSimulation handles POST /api/v1/simulations
func (h *SimulationHandler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSimulationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	s := h.manager.Create(req.ToConfig())
	writeJSON(w, http.StatusCreated, models.NewSimulationStatus(s))
}

// ListSimulations handles GET /api/v1/simulations
func (h *SimulationHandler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	runs := h.manager.List()
	out := make([]models.SimulationStatus, 0, len(runs))
	for _, s := range runs {
		out = append(out, models.NewSimulationStatus(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSimulation handles GET /api/v1/simulations/{id}
func (h *SimulationHandler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSimulationStatus(s))
}

// StepSimulation handles POST /api/v1/simulations/{id}/step
func (h *SimulationHandler) StepSimulation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Simulation not found")
		return
	}

	if _, err := s.StepDay(); err != nil {
		writeJSONError(w, http.StatusConflict, "run_finished", "Simulation already finished")
		return
	}
	if s.Finished() {
		h.archiveRun(r.Context(), s)
	}
	writeJSON(w, http.StatusOK, models.NewSimulationStatus(s))
}

// RunSimulation handles POST /api/v1/simulations/{id}/run
func (h *SimulationHandler) RunSimulation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Simulation not found")
		return
	}
	if s.Finished() {
		writeJSONError(w, http.StatusConflict, "run_finished", "Simulation already finished")
		return
	}

	final, err := s.RunToCompletion()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "run_error", err.Error())
		return
	}
	h.archiveRun(r.Context(), s)
	writeJSON(w, http.StatusOK, final)
}

// GetDayReports handles GET /api/v1/simulations/{id}/days
func (h *SimulationHandler) GetDayReports(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Simulation not found")
		return
	}
	writeJSON(w, http.StatusOK, s.DayReports())
}

// GetCampaign handles GET /api/v1/simulations/{id}/campaigns/{cid}
func (h *SimulationHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.lookupCampaign(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         c.ID(),
		"advertiser": c.Advertiser(),
		"allocated":  c.IsAllocated(),
		"active":     c.IsActive(),
		"budget":     c.Budget(),
		"day":        c.Day(),
		"contract":   c.Contract(),
		"today":      c.TodayStats(),
		"totals":     c.Totals(),
	})
}

// GetCampaignStats handles GET /api/v1/simulations/{id}/campaigns/{cid}/stats
// The optional from/to query parameters select an inclusive day range;
// they default to the full campaign history.
func (h *SimulationHandler) GetCampaignStats(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.lookupCampaign(w, r)
	if !ok {
		return
	}

	from := 0
	to := c.Day()
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = strconv.Atoi(v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid from day")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = strconv.Atoi(v); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid to day")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id": c.ID(),
		"from":        from,
		"to":          to,
		"stats":       c.Stats(from, to),
	})
}

// SetCampaignLimit handles POST /api/v1/simulations/{id}/campaigns/{cid}/limits
// The limit takes effect from the next day. Requests naming a network
// other than the campaign's winner are accepted and dropped, so the
// response only acknowledges receipt.
func (h *SimulationHandler) SetCampaignLimit(w http.ResponseWriter, r *http.Request) {
	_, c, ok := h.lookupCampaign(w, r)
	if !ok {
		return
	}

	var req models.SetLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	c.ApplyLimit(req.AdNet, req.BudgetLimit, req.ImpressionLimit)
	writeJSONMessage(w, http.StatusAccepted, "Limit staged for next day")
}

func (h *SimulationHandler) lookupCampaign(w http.ResponseWriter, r *http.Request) (*sim.Simulation, *demand.Campaign, bool) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Simulation not found")
		return nil, nil, false
	}
	cid, err := strconv.Atoi(chi.URLParam(r, "cid"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid campaign id")
		return nil, nil, false
	}
	c, ok := s.Campaign(cid)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Campaign not found")
		return nil, nil, false
	}
	return s, c, true
}

// archiveRun persists the final report of a freshly completed run. An
// archive failure is logged but never fails the request; the run result
// is still returned to the caller.
func (h *SimulationHandler) archiveRun(ctx context.Context, s *sim.Simulation) {
	final, ok := s.Final()
	if !ok {
		return
	}
	body, err := json.Marshal(final)
	if err != nil {
		logrus.WithError(err).WithField("run", s.ID).Error("failed to marshal final report")
		return
	}

	record := &models.ReportRecord{
		RunID:      final.RunID,
		Seed:       final.Seed,
		Days:       final.Days,
		Agents:     len(final.Agents),
		Campaigns:  len(final.Campaigns),
		Report:     body,
		FinishedAt: final.FinishedAt,
	}
	if err := h.reports.Save(ctx, record); err != nil {
		logrus.WithError(err).WithField("run", s.ID).Error("failed to archive run report")
	}

	if h.exporter != nil {
		if _, err := h.exporter.ExportReport(ctx, final); err != nil {
			logrus.WithError(err).WithField("run", s.ID).Error("failed to export run report")
		}
	}
}
