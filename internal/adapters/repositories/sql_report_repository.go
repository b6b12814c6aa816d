package repositories

import (
	"context"
	"database/sql"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/platform/obs"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// SQLReportRepository is the Postgres-backed ReportRepository.
type SQLReportRepository struct {
	DB  *sql.DB
	Log zerolog.Logger
}

func NewSQLReportRepository(db *sql.DB, log zerolog.Logger) *SQLReportRepository {
	return &SQLReportRepository{DB: db, Log: log}
}

func (s *SQLReportRepository) SaveReport(ctx context.Context, report *domain.RunReport) (_ int64, err error) {
	defer obs.Time(ctx, s.Log, "reports.sql.SaveReport")(&err)

	if s.DB == nil {
		return 0, errors.New("report repository: db is nil")
	}
	if report == nil {
		return 0, errors.New("save report: report must be non-nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save report: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
	INSERT INTO simulation_runs (
		scenario, fingerprint, scheduler, requests, delivered, ticks,
		finish_time, mean_wait, max_wait, mean_ride, mean_trip, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING id;
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
		report.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save report: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO elevator_reports (
		run_id, slot, name, delivered, final_position, final_state, mean_wait, mean_ride
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`)
	if err != nil {
		return 0, fmt.Errorf("save report: db prepare: %w", err)
	}
	defer stmt.Close()

	for i, er := range report.Elevators {
		if _, err := stmt.ExecContext(ctx, id, i, er.Name, er.Delivered, er.FinalPosition, er.FinalState, er.MeanWait, er.MeanRide); err != nil {
			return 0, fmt.Errorf("save report: insert elevator %q: %w", er.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save report: commit: %w", err)
	}

	return id, nil
}

func (s *SQLReportRepository) ListReports(ctx context.Context, limit int) (_ []*domain.RunReport, err error) {
	defer obs.Time(ctx, s.Log, "reports.sql.ListReports")(&err)

	if s.DB == nil {
		return nil, errors.New("report repository: db is nil")
	}
	if limit <= 0 {
		return []*domain.RunReport{}, nil
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, scenario, fingerprint, scheduler, requests, delivered, ticks,
		finish_time, mean_wait, max_wait, mean_ride, mean_trip, created_at
	FROM simulation_runs
	ORDER BY id DESC
	LIMIT $1;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: query simulation_runs table: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.RunReport, 0, limit)
	for rows.Next() {
		r := &domain.RunReport{}
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
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("list reports: scan rows: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: row iteration: %w", err)
	}

	if len(reports) == 0 {
		return reports, nil
	}

	erows, err := s.DB.QueryContext(ctx, `
	SELECT run_id, name, delivered, final_position, final_state, mean_wait, mean_ride
	FROM elevator_reports
	WHERE run_id = ANY($1::bigint[])
	ORDER BY run_id, slot;
	`, runIDs(reports))
	if err != nil {
		return nil, fmt.Errorf("list reports: query elevator_reports table: %w", err)
	}
	defer erows.Close()

	if err := scanElevatorReports(erows, reports); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	return reports, nil
}
