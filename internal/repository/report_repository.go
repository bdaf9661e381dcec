package repository

import (
	"context"
	"database/sql"
	"fmt"

	"adx/internal/interfaces"
	"adx/internal/models"
)

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) interfaces.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Save(ctx context.Context, record *models.ReportRecord) error {
	query := `
        INSERT INTO simulation_reports (
            run_id, seed, days, agents, campaigns, report, finished_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	err := r.db.QueryRowContext(
		ctx,
		query,
		record.RunID,
		record.Seed,
		record.Days,
		record.Agents,
		record.Campaigns,
		[]byte(record.Report),
		record.FinishedAt,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByRunID(ctx context.Context, runID string) (*models.ReportRecord, error) {
	query := `
        SELECT id, run_id, seed, days, agents, campaigns, report, finished_at, created_at
        FROM simulation_reports
        WHERE run_id = $1
    `
	var record models.ReportRecord
	var report []byte
	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&record.ID,
		&record.RunID,
		&record.Seed,
		&record.Days,
		&record.Agents,
		&record.Campaigns,
		&report,
		&record.FinishedAt,
		&record.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	record.Report = report
	return &record, nil
}

func (r *reportRepository) List(ctx context.Context, filter interfaces.ReportFilter) ([]*models.ReportRecord, error) {
	query := `
        SELECT id, run_id, seed, days, agents, campaigns, report, finished_at, created_at
        FROM simulation_reports
        ORDER BY finished_at DESC
    `
	var args []interface{}
	argPos := 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
		argPos++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argPos)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.ReportRecord
	for rows.Next() {
		var record models.ReportRecord
		var report []byte
		if err := rows.Scan(
			&record.ID,
			&record.RunID,
			&record.Seed,
			&record.Days,
			&record.Agents,
			&record.Campaigns,
			&report,
			&record.FinishedAt,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		record.Report = report
		records = append(records, &record)
	}
	return records, rows.Err()
}
