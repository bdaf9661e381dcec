package migrations

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations are applied in order, once each, tracked in
// schema_migrations.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_simulation_reports",
		Up: `
			CREATE TABLE IF NOT EXISTS simulation_reports (
				id SERIAL PRIMARY KEY,
				run_id TEXT NOT NULL UNIQUE,
				seed BIGINT NOT NULL,
				days INTEGER NOT NULL,
				agents INTEGER NOT NULL,
				campaigns INTEGER NOT NULL,
				report JSONB NOT NULL,
				finished_at TIMESTAMPTZ NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`,
	},
	{
		Version: 2,
		Name:    "index_simulation_reports_finished_at",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_simulation_reports_finished_at
			ON simulation_reports (finished_at DESC)
		`,
	},
}

func RunMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if _, exists := applied[m.Version]; exists {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Name, err)
		}
		logrus.WithField("migration", m.Name).Info("applied migration")
	}
	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getAppliedMigrations(db *sql.DB) (map[int]struct{}, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		m.Version, m.Name,
	); err != nil {
		return err
	}
	return tx.Commit()
}
