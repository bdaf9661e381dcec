package models

import "adx/internal/sim"

// CreateSimulationRequest configures a new run. Every field is
// optional; zero values fall back to the engine defaults.
type CreateSimulationRequest struct {
	Days                int     `json:"days" validate:"omitempty,min=1,max=365"`
	Agents              int     `json:"agents" validate:"omitempty,min=2,max=64"`
	Users               int     `json:"users" validate:"omitempty,min=1,max=100000"`
	QueriesPerUser      int     `json:"queries_per_user" validate:"omitempty,min=1,max=100"`
	CampaignDurationMin int     `json:"campaign_duration_min" validate:"omitempty,min=1"`
	CampaignDurationMax int     `json:"campaign_duration_max" validate:"omitempty,min=1,gtefield=CampaignDurationMin"`
	ReachPerDay         int64   `json:"reach_per_day" validate:"omitempty,min=1"`
	ReserveCPM          float64 `json:"reserve_cpm" validate:"omitempty,gt=0"`
	QualityLearningRate float64 `json:"quality_learning_rate" validate:"omitempty,gt=0,lte=1"`
	Seed                int64   `json:"seed"`
}

func (r CreateSimulationRequest) ToConfig() sim.Config {
	return sim.Config{
		Days:                r.Days,
		Agents:              r.Agents,
		Users:               r.Users,
		QueriesPerUser:      r.QueriesPerUser,
		CampaignDurationMin: r.CampaignDurationMin,
		CampaignDurationMax: r.CampaignDurationMax,
		ReachPerDay:         r.ReachPerDay,
		ReserveCPM:          r.ReserveCPM,
		QualityLearningRate: r.QualityLearningRate,
		Seed:                r.Seed,
	}
}

// SimulationStatus is the run view returned by the API.
type SimulationStatus struct {
	ID        string     `json:"id"`
	Day       int        `json:"day"`
	Finished  bool       `json:"finished"`
	Campaigns int        `json:"campaigns"`
	Config    sim.Config `json:"config"`
}

func NewSimulationStatus(s *sim.Simulation) SimulationStatus {
	return SimulationStatus{
		ID:        s.ID,
		Day:       s.Day(),
		Finished:  s.Finished(),
		Campaigns: s.CampaignCount(),
		Config:    s.Config(),
	}
}

// SetLimitRequest stages next-day delivery ceilings for a campaign on
// behalf of an ad network. Messages naming a non-winning network are
// dropped without error, matching the platform semantics.
type SetLimitRequest struct {
	AdNet           string  `json:"adnet" validate:"required"`
	BudgetLimit     float64 `json:"budget_limit" validate:"gt=0"`
	ImpressionLimit float64 `json:"impression_limit" validate:"gt=0"`
}
