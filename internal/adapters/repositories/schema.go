package repositories

import (
	"context"
	"database/sql"
	"elevator-sim/internal/ports"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS simulation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		scheduler TEXT NOT NULL,
		requests INTEGER NOT NULL,
		delivered INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		finish_time REAL NOT NULL,
		mean_wait REAL NOT NULL,
		max_wait REAL NOT NULL,
		mean_ride REAL NOT NULL,
		mean_trip REAL NOT NULL,
		created_at TEXT NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS elevator_reports (
		run_id INTEGER NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
		slot INTEGER NOT NULL,
		name TEXT NOT NULL,
		delivered INTEGER NOT NULL,
		final_position REAL NOT NULL,
		final_state TEXT NOT NULL,
		mean_wait REAL NOT NULL,
		mean_ride REAL NOT NULL,
		PRIMARY KEY (run_id, slot)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_simulation_runs_fingerprint
	ON simulation_runs(fingerprint);
	`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS simulation_runs (
		id BIGSERIAL PRIMARY KEY,
		scenario TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		scheduler TEXT NOT NULL,
		requests INTEGER NOT NULL,
		delivered INTEGER NOT NULL,
		ticks BIGINT NOT NULL,
		finish_time DOUBLE PRECISION NOT NULL,
		mean_wait DOUBLE PRECISION NOT NULL,
		max_wait DOUBLE PRECISION NOT NULL,
		mean_ride DOUBLE PRECISION NOT NULL,
		mean_trip DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS elevator_reports (
		run_id BIGINT NOT NULL REFERENCES simulation_runs(id) ON DELETE CASCADE,
		slot INTEGER NOT NULL,
		name TEXT NOT NULL,
		delivered INTEGER NOT NULL,
		final_position DOUBLE PRECISION NOT NULL,
		final_state TEXT NOT NULL,
		mean_wait DOUBLE PRECISION NOT NULL,
		mean_ride DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, slot)
	);
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_simulation_runs_fingerprint
	ON simulation_runs(fingerprint);
	`,
}

// Initialize the report tables for the given dialect ("postgres" or "sqlite").
func InitSchema(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	var statements []string
	switch dialect {
	case "sqlite":
		statements = sqliteSchema
	case "postgres":
		statements = postgresSchema
	default:
		return fmt.Errorf("init schema: unknown dialect %q", dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// NewReportRepository picks the ReportRepository implementation for dialect.
func NewReportRepository(db *sql.DB, dialect string, log zerolog.Logger) (ports.ReportRepository, error) {
	switch dialect {
	case "sqlite":
		return NewSqliteReportRepository(db, log), nil
	case "postgres":
		return NewSQLReportRepository(db, log), nil
	default:
		return nil, fmt.Errorf("report repository: unknown dialect %q", dialect)
	}
}
