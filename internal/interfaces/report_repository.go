package interfaces

import (
	"context"

	"adx/internal/models"
)

// ReportFilter bounds report listings.
type ReportFilter struct {
	Limit  int
	Offset int
}

// ReportRepository archives and serves completed-run reports.
type ReportRepository interface {
	Save(ctx context.Context, record *models.ReportRecord) error
	GetByRunID(ctx context.Context, runID string) (*models.ReportRecord, error)
	List(ctx context.Context, filter ReportFilter) ([]*models.ReportRecord, error)
}
