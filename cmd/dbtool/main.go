package main

import (
	"context"
	"elevator-sim/internal/adapters/repositories"
	"elevator-sim/internal/config"
	"elevator-sim/internal/platform/db"
	"elevator-sim/internal/platform/logger"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

func main() {
	envErr := godotenv.Load()

	log, err := logger.New(config.Get("LOG_LEVEL", "info"), os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if envErr != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, dialect, err := db.OpenTarget(ctx, databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	log.Info().Str("dialect", dialect).Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	log.Info().Msg("schema ready")
}
