package sim

import (
	"time"

	"adx/internal/demand"
)

// CampaignSnapshot is the per-campaign view captured in reports.
type CampaignSnapshot struct {
	ID         int                  `json:"id"`
	Advertiser string               `json:"advertiser,omitempty"`
	Allocated  bool                 `json:"allocated"`
	Budget     float64              `json:"budget"`
	Contract   demand.Contract      `json:"contract"`
	Today      demand.CampaignStats `json:"today"`
	Totals     demand.CampaignStats `json:"totals"`
}

func snapshotCampaign(c *demand.Campaign) CampaignSnapshot {
	return CampaignSnapshot{
		ID:         c.ID(),
		Advertiser: c.Advertiser(),
		Allocated:  c.IsAllocated(),
		Budget:     c.Budget(),
		Contract:   c.Contract(),
		Today:      c.TodayStats(),
		Totals:     c.Totals(),
	}
}

// DayReport is the end-of-day state broadcast of a run.
type DayReport struct {
	Day       int                `json:"day"`
	Campaigns []CampaignSnapshot `json:"campaigns"`
	Quality   map[string]float64 `json:"quality"`
	Balances  map[string]float64 `json:"balances"`
}

// AgentResult summarizes one ad network at the end of a run.
type AgentResult struct {
	Name         string  `json:"name"`
	Balance      float64 `json:"balance"`
	Quality      float64 `json:"quality"`
	CampaignsWon int     `json:"campaigns_won"`
}

// FinalReport is the archived outcome of a completed run.
type FinalReport struct {
	RunID      string             `json:"run_id"`
	Seed       int64              `json:"seed"`
	Days       int                `json:"days"`
	Agents     []AgentResult      `json:"agents"`
	Campaigns  []CampaignSnapshot `json:"campaigns"`
	FinishedAt time.Time          `json:"finished_at"`
}
