package main

import (
	"context"
	"elevator-sim/internal/adapters/repositories"
	"elevator-sim/internal/adapters/workload"
	"elevator-sim/internal/config"
	"elevator-sim/internal/domain"
	"elevator-sim/internal/platform/db"
	"elevator-sim/internal/platform/logger"
	"elevator-sim/internal/services"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	_ "modernc.org/sqlite"
)

func main() {
	_ = godotenv.Load()

	parallel := flag.Int("parallel", runtime.NumCPU(), "scenarios run at once")
	persist := flag.Bool("persist", false, "store reports in DATABASE_URL")
	asJSON := flag.Bool("json", false, "print reports as JSON")
	level := flag.String("log-level", config.Get("LOG_LEVEL", "warn"), "log level")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "usage: %s [flags] scenario.yaml...\n", os.Args[0])
		fmt.Fprintf(out, "schedulers: %s\n", strings.Join(services.SchedulerNames, ", "))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(*level, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, log, flag.Args(), *parallel, *persist, *asJSON); err != nil {
		log.Error().Err(err).Msg("simulate failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, log zerolog.Logger, paths []string, parallel int, persist, asJSON bool) error {
	scenarios := make([]*config.Scenario, 0, len(paths))
	for _, path := range paths {
		sc, err := config.LoadScenario(path)
		if err != nil {
			return err
		}
		scenarios = append(scenarios, sc)
	}

	runner := &services.Runner{Workloads: workload.FromConfig, Log: log}

	if persist {
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			return errors.New("-persist needs DATABASE_URL")
		}
		conn, dialect, err := db.OpenTarget(ctx, databaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
			return err
		}
		runner.Repo, err = repositories.NewReportRepository(conn, dialect, log)
		if err != nil {
			return err
		}
	}

	reports, err := runner.RunBatch(ctx, scenarios, parallel)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	p := message.NewPrinter(language.English)
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		printReport(os.Stdout, p, r)
	}
	return nil
}

func printReport(w io.Writer, p *message.Printer, r *domain.RunReport) {
	p.Fprintf(w, "scenario   %s (%s)\n", r.Scenario, r.Fingerprint)
	p.Fprintf(w, "scheduler  %s\n", r.Scheduler)
	p.Fprintf(w, "delivered  %d of %d riders\n", r.Delivered, r.Requests)
	p.Fprintf(w, "finished   t=%.2f after %d ticks\n", r.FinishTime, r.Ticks)
	p.Fprintf(w, "wait       mean %.2f  max %.2f\n", r.MeanWait, r.MaxWait)
	p.Fprintf(w, "ride       mean %.2f\n", r.MeanRide)
	p.Fprintf(w, "trip       mean %.2f\n", r.MeanTrip)
	if r.ID != 0 {
		p.Fprintf(w, "stored     run #%d\n", r.ID)
	}

	p.Fprintf(w, "\n%-12s %10s %9s %-11s %9s %9s\n", "elevator", "delivered", "position", "state", "wait", "ride")
	for _, e := range r.Elevators {
		p.Fprintf(w, "%-12s %10d %9.1f %-11s %9.2f %9.2f\n",
			e.Name, e.Delivered, e.FinalPosition, e.FinalState, e.MeanWait, e.MeanRide)
	}
}
