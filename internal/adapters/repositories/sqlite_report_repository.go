package repositories

import (
	"context"
	"database/sql"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SQLite-backed implementation of the ReportRepository port.
type SqliteReportRepository struct {
	DB  *sql.DB
	Log zerolog.Logger
}

func NewSqliteReportRepository(db *sql.DB, log zerolog.Logger) *SqliteReportRepository {
	return &SqliteReportRepository{DB: db, Log: log}
}

// Store a run report together with its per-elevator rows.
func (s *SqliteReportRepository) SaveReport(ctx context.Context, report *domain.RunReport) (_ int64, err error) {
	defer obs.Time(ctx, s.Log, "reports.sqlite.SaveReport")(&err)

	if s.DB == nil {
		return 0, errors.New("sqlite report repository: DB is nil")
	}
	if report == nil {
		return 0, errors.New("save report: report must be non-nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save report: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO simulation_runs (
		scenario,
		fingerprint,
		scheduler,
		requests,
		delivered,
		ticks,
		finish_time,
		mean_wait,
		max_wait,
		mean_ride,
		mean_trip,
		created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		report.Scenario,
		report.Fingerprint,
		report.Scheduler,
		report.Requests,
		report.Delivered,
		report.Ticks,
		report.FinishTime,
		report.MeanWait,
		report.MaxWait,
		report.MeanRide,
		report.MeanTrip,
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("save report: insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save report: last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO elevator_reports (
		run_id,
		slot,
		name,
		delivered,
		final_position,
		final_state,
		mean_wait,
		mean_ride
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return 0, fmt.Errorf("save report: prepare elevator insert: %w", err)
	}
	defer stmt.Close()

	for i, er := range report.Elevators {
		if _, err := stmt.ExecContext(ctx, id, i, er.Name, er.Delivered, er.FinalPosition, er.FinalState, er.MeanWait, er.MeanRide); err != nil {
			return 0, fmt.Errorf("save report: insert elevator %q: %w", er.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save report: commit tx: %w", err)
	}

	return id, nil
}

// Return up to limit reports, newest first.
func (s *SqliteReportRepository) ListReports(ctx context.Context, limit int) (_ []*domain.RunReport, err error) {
	defer obs.Time(ctx, s.Log, "reports.sqlite.ListReports")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite report repository: DB is nil")
	}
	if limit <= 0 {
		return []*domain.RunReport{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		id,
		scenario,
		fingerprint,
		scheduler,
		requests,
		delivered,
		ticks,
		finish_time,
		mean_wait,
		max_wait,
		mean_ride,
		mean_trip,
		created_at
	FROM simulation_runs
	ORDER BY id DESC
	LIMIT ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: query simulation_runs table: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.RunReport, 0, limit)
	for rows.Next() {
		r := &domain.RunReport{}
		var created string
		if err := rows.Scan(
			&r.ID,
			&r.Scenario,
			&r.Fingerprint,
			&r.Scheduler,
			&r.Requests,
			&r.Delivered,
			&r.Ticks,
			&r.FinishTime,
			&r.MeanWait,
			&r.MaxWait,
			&r.MeanRide,
			&r.MeanTrip,
			&created,
		); err != nil {
			return nil, fmt.Errorf("list reports: scan row: %w", err)
		}

		r.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("list reports: run %d created_at: %w", r.ID, err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: row iteration: %w", err)
	}

	if len(reports) == 0 {
		return reports, nil
	}

	ids := runIDs(reports)
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}

	// SQLite cannot bind a slice in IN (...); only placeholders are interpolated.
	q := fmt.Sprintf(`
	SELECT
		run_id,
		name,
		delivered,
		final_position,
		final_state,
		mean_wait,
		mean_ride
	FROM elevator_reports
	WHERE run_id IN (%s)
	ORDER BY run_id, slot;
	`, strings.Join(ph, ","))

	erows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: query elevator_reports table: %w", err)
	}
	defer erows.Close()

	if err := scanElevatorReports(erows, reports); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return reports, nil
}
