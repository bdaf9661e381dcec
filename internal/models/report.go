package models

import (
	"encoding/json"
	"time"
)

// ReportRecord is an archived final report of a completed run.
type ReportRecord struct {
	ID         int64           `json:"id"`
	RunID      string          `json:"run_id"`
	Seed       int64           `json:"seed"`
	Days       int             `json:"days"`
	Agents     int             `json:"agents"`
	Campaigns  int             `json:"campaigns"`
	Report     json.RawMessage `json:"report"`
	FinishedAt time.Time       `json:"finished_at"`
	CreatedAt  time.Time       `json:"created_at"`
}
