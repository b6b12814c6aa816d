package services

import (
	"context"
	"elevator-sim/internal/config"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/platform/obs"
	"elevator-sim/internal/ports"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrNoRepository = errors.New("no report repository configured")

// Runner executes scenarios end to end: build, run to completion, summarize,
// then store the report. Repo and Cache are optional.
//
// Runs are deterministic, so a report found in the cache under the scenario's
// fingerprint is returned without simulating again. Cache failures are logged
// and otherwise ignored; repository failures fail the run.
type Runner struct {
	Workloads WorkloadFactory
	Repo      ports.ReportRepository
	Cache     ports.ReportCache
	Log       zerolog.Logger
}

func (r *Runner) Run(ctx context.Context, sc *config.Scenario) (_ *domain.RunReport, cached bool, err error) {
	defer obs.Time(ctx, r.Log, "runner.Run")(&err)

	if sc == nil {
		return nil, false, errors.New("run scenario: scenario must be non-nil")
	}
	if err := sc.Validate(); err != nil {
		return nil, false, fmt.Errorf("run scenario: %w", err)
	}

	fingerprint, err := sc.Fingerprint()
	if err != nil {
		return nil, false, fmt.Errorf("run scenario: %w", err)
	}

	if r.Cache != nil {
		report, ok, err := r.Cache.Get(ctx, fingerprint)
		if err != nil {
			r.Log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("report cache lookup failed")
		} else if ok {
			return report, true, nil
		}
	}

	sim, err := BuildSimulation(sc, r.Workloads, r.Log)
	if err != nil {
		return nil, false, fmt.Errorf("run scenario: %w", err)
	}
	if err := sim.Run(ctx); err != nil {
		return nil, false, fmt.Errorf("run scenario %q: %w", sc.Name, err)
	}

	report, err := Summarize(sim)
	if err != nil {
		return nil, false, fmt.Errorf("run scenario %q: %w", sc.Name, err)
	}
	report.Scenario = sc.Name
	report.Fingerprint = fingerprint
	report.Scheduler = schedulerName(sc.Scheduler)
	report.CreatedAt = time.Now().UTC()

	if r.Repo != nil {
		id, err := r.Repo.SaveReport(ctx, report)
		if err != nil {
			return nil, false, fmt.Errorf("run scenario %q: %w", sc.Name, err)
		}
		report.ID = id
	}

	if r.Cache != nil {
		if err := r.Cache.Put(ctx, fingerprint, report); err != nil {
			r.Log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("report cache store failed")
		}
	}

	return report, false, nil
}

// RunBatch runs independent scenarios concurrently, at most limit at a time
// (no limit when limit <= 0). Reports come back in scenario order. The first
// failure cancels the scenarios still running.
func (r *Runner) RunBatch(ctx context.Context, scenarios []*config.Scenario, limit int) ([]*domain.RunReport, error) {
	reports := make([]*domain.RunReport, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, sc := range scenarios {
		g.Go(func() error {
			report, _, err := r.Run(ctx, sc)
			if err != nil {
				return fmt.Errorf("run batch: scenario #%d: %w", i+1, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// List returns the most recent stored reports.
func (r *Runner) List(ctx context.Context, limit int) ([]*domain.RunReport, error) {
	if r.Repo == nil {
		return nil, ErrNoRepository
	}
	reports, err := r.Repo.ListReports(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func schedulerName(name string) string {
	if name == "" {
		return "nearest"
	}
	return name
}
