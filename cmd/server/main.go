package main

import (
	"context"
	"database/sql"
	"elevator-sim/internal/adapters/cache"
	"elevator-sim/internal/adapters/repositories"
	"elevator-sim/internal/adapters/workload"
	"elevator-sim/internal/api"
	"elevator-sim/internal/api/handlers"
	"elevator-sim/internal/config"
	"elevator-sim/internal/platform/db"
	"elevator-sim/internal/platform/logger"
	"elevator-sim/internal/ports"
	"elevator-sim/internal/services"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQL storage, Redis cache) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	log, err := logger.JSON(config.Get("LOG_LEVEL", "info"), os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if envErr != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := config.Get("DATABASE_URL", "reports.db")
	port := config.Get("PORT", "8080")

	conn, dialect, err := db.OpenTarget(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo, err := openRepository(ctx, conn, dialect, log)
	if err != nil {
		return err
	}

	runner := &services.Runner{
		Workloads: workload.FromConfig,
		Repo:      repo,
		Log:       log,
	}

	if redisURL := config.Get("REDIS_URL", ""); redisURL != "" {
		client, err := openRedis(ctx, redisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		ttl, err := time.ParseDuration(config.Get("REPORT_CACHE_TTL", cache.DefaultTTL.String()))
		if err != nil {
			return fmt.Errorf("REPORT_CACHE_TTL: %w", err)
		}
		runner.Cache = cache.NewRedisReportCache(client, ttl, log)
		log.Info().Dur("ttl", ttl).Msg("report cache enabled")
	}

	runTimeout, err := time.ParseDuration(config.Get("SIM_RUN_TIMEOUT", handlers.DefaultRunTimeout.String()))
	if err != nil {
		return fmt.Errorf("SIM_RUN_TIMEOUT: %w", err)
	}
	limits := handlers.RunLimits{
		MaxTicks:  config.GetInt("SIM_MAX_TICKS", handlers.DefaultMaxTicks),
		MaxRiders: config.GetInt("SIM_MAX_RIDERS", handlers.DefaultMaxRiders),
		Timeout:   runTimeout,
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(runner, limits, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("db", dialect).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// Initialize the schema on startup so local runs need no separate dbtool step.
func openRepository(ctx context.Context, conn *sql.DB, dialect string, log zerolog.Logger) (ports.ReportRepository, error) {
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return nil, err
	}
	return repositories.NewReportRepository(conn, dialect, log)
}

func openRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
