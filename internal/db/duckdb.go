package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/joeblew999/plat-photomap/internal/logger"
)

// Config holds database configuration. An empty DataDir opens an in-memory
// database.
type Config struct {
	DataDir string
	DBName  string
	Logger  *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS photos (
	image_id        BIGINT PRIMARY KEY,
	filename        VARCHAR NOT NULL,
	camera_make     VARCHAR NOT NULL DEFAULT '',
	taken_date      TIMESTAMP NOT NULL,
	taken_date_type INTEGER NOT NULL DEFAULT 0,
	latitude        DOUBLE,
	longitude       DOUBLE,
	geo_type        INTEGER NOT NULL DEFAULT 0,
	thumbnail       BLOB
)`

// Open opens the DuckDB database and creates the photo schema.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	log := logger.Or(cfg.Logger)

	dsn := ""
	if cfg.DataDir != "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		name := cfg.DBName
		if name == "" {
			name = "photomap"
		}
		dsn = filepath.Join(duckdbDir, name+".duckdb")
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	log.Info("database ready", "path", displayPath(dsn))
	return conn, nil
}

func displayPath(dsn string) string {
	if dsn == "" {
		return ":memory:"
	}
	return dsn
}
