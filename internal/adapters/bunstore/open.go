package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// Config selects the SQL driver and connection string.
type Config struct {
	// Driver is "sqlite3" or "pgx" ("postgres" is accepted as an alias).
	Driver string
	DSN    string
}

// Open connects to the database, pings it and ensures the documents table.
func Open(ctx context.Context, cfg Config) (*bun.DB, error) {
	driver, dialect, err := resolveDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("bunstore: dsn is required")
	}

	sqldb, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open %s: %w", driver, err)
	}
	db := bun.NewDB(sqldb, dialect)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bunstore: ping: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bunstore: ensure schema: %w", err)
	}
	return db, nil
}

func resolveDialect(driver string) (string, schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return "sqlite3", sqlitedialect.New(), nil
	case "pgx", "postgres", "postgresql":
		return "pgx", pgdialect.New(), nil
	default:
		return "", nil, fmt.Errorf("bunstore: unsupported driver %q", driver)
	}
}
