package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Open connects to Postgres through the pgx stdlib driver, which the caller
// registers with a blank import of github.com/jackc/pgx/v5/stdlib.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSQLite opens a database file through modernc.org/sqlite (registered by a
// blank import in the caller). ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("openDB: sqlite path must not be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", path, err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", path, err)
	}

	return db, nil
}

// Dialect picks the SQL flavour for a DATABASE_URL-style setting: anything
// that looks like a Postgres URL is "postgres", everything else is a sqlite path.
func Dialect(target string) string {
	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

// OpenTarget opens target with the driver its Dialect names and returns the
// dialect alongside the connection.
func OpenTarget(ctx context.Context, target string) (*sql.DB, string, error) {
	dialect := Dialect(target)
	if dialect == "postgres" {
		db, err := Open(ctx, target)
		return db, dialect, err
	}
	db, err := OpenSQLite(ctx, target)
	return db, dialect, err
}
