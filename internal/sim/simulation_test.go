package sim

import (
	"errors"
	"testing"
)

func testConfig() Config {
	return Config{
		Days:                8,
		Agents:              3,
		Users:               60,
		QueriesPerUser:      2,
		CampaignDurationMin: 2,
		CampaignDurationMax: 3,
		ReachPerDay:         50,
		ReserveCPM:          10,
		InitialCPM:          300,
		EstimatorDecay:      0.1,
		QualityLearningRate: 0.4,
		Seed:                42,
	}
}

func TestSimulationLifecycle(t *testing.T) {
	s := NewSimulation("run-1", testConfig())

	if s.Day() != 0 {
		t.Fatalf("new run must start at day 0, got %d", s.Day())
	}
	// Day 0 already holds one initial campaign per agent plus the first
	// announced opportunity.
	if got, want := s.CampaignCount(), 4; got != want {
		t.Fatalf("campaigns after setup: got %d want %d", got, want)
	}

	final, err := s.RunToCompletion()
	if err != nil {
		t.Fatalf("RunToCompletion: %v", err)
	}
	if !s.Finished() {
		t.Fatalf("run must be finished")
	}
	if final.Days != 8 || len(final.Agents) != 3 {
		t.Fatalf("final report shape: %+v", final)
	}

	// Initial campaigns ended inside the horizon, so their winners'
	// quality scores were updated at least once.
	updated := 0
	for _, a := range final.Agents {
		if a.CampaignsWon == 0 {
			t.Fatalf("agent %s lost its initial campaign", a.Name)
		}
		if a.Quality != 1.0 {
			updated++
		}
	}
	if updated == 0 {
		t.Fatalf("no quality score moved over a full run")
	}

	// Delivery happened: some campaign accumulated targeted volume.
	delivered := false
	for _, c := range final.Campaigns {
		if c.Totals.TargetedImps > 0 {
			delivered = true
			break
		}
	}
	if !delivered {
		t.Fatalf("no campaign delivered any targeted impressions")
	}

	if _, err := s.StepDay(); !errors.Is(err, ErrFinished) {
		t.Fatalf("stepping a finished run: got %v", err)
	}
}

func TestSimulationDeterministicForSeed(t *testing.T) {
	a, err := NewSimulation("a", testConfig()).RunToCompletion()
	if err != nil {
		t.Fatalf("run a: %v", err)
	}
	b, err := NewSimulation("b", testConfig()).RunToCompletion()
	if err != nil {
		t.Fatalf("run b: %v", err)
	}

	if len(a.Agents) != len(b.Agents) || len(a.Campaigns) != len(b.Campaigns) {
		t.Fatalf("runs diverged in shape")
	}
	for i := range a.Agents {
		if a.Agents[i] != b.Agents[i] {
			t.Fatalf("agent %d diverged: %+v vs %+v", i, a.Agents[i], b.Agents[i])
		}
	}
	for i := range a.Campaigns {
		if a.Campaigns[i].Totals != b.Campaigns[i].Totals ||
			a.Campaigns[i].Advertiser != b.Campaigns[i].Advertiser ||
			a.Campaigns[i].Budget != b.Campaigns[i].Budget {
			t.Fatalf("campaign %d diverged", i)
		}
	}
}

func TestSimulationDayReports(t *testing.T) {
	s := NewSimulation("r", testConfig())
	if _, err := s.StepDay(); err != nil {
		t.Fatalf("StepDay: %v", err)
	}
	if _, err := s.StepDay(); err != nil {
		t.Fatalf("StepDay: %v", err)
	}
	reports := s.DayReports()
	if len(reports) != 2 {
		t.Fatalf("expected 2 day reports, got %d", len(reports))
	}
	if reports[0].Day != 0 || reports[1].Day != 1 {
		t.Fatalf("report days: %d, %d", reports[0].Day, reports[1].Day)
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	s := m.Create(testConfig())
	if s.ID == "" {
		t.Fatalf("expected a run id")
	}
	got, ok := m.Get(s.ID)
	if !ok || got != s {
		t.Fatalf("lookup failed")
	}
	if _, ok := m.Get("nope"); ok {
		t.Fatalf("unknown id must miss")
	}
	if len(m.List()) != 1 {
		t.Fatalf("expected one run listed")
	}
}
