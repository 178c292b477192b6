package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"jumpbot/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS catalog_meta (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS systems (
				seq           INTEGER PRIMARY KEY,
				name          TEXT NOT NULL UNIQUE,
				region        TEXT NOT NULL,
				constellation TEXT NOT NULL,
				truesec       TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS gates (
				system   TEXT NOT NULL,
				position INTEGER NOT NULL,
				neighbor TEXT NOT NULL,
				PRIMARY KEY (system, position)
			);

			CREATE TABLE IF NOT EXISTS trade_hubs (
				seq     INTEGER PRIMARY KEY,
				system  TEXT NOT NULL,
				planet  TEXT NOT NULL DEFAULT '',
				moon    TEXT NOT NULL DEFAULT '',
				station TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS station_counts (
				system TEXT PRIMARY KEY,
				count  INTEGER NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1 (catalog)")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS query_history (
				id          TEXT PRIMARY KEY,
				timestamp   TEXT NOT NULL,
				kind        TEXT NOT NULL,
				input_json  TEXT NOT NULL DEFAULT '{}',
				outcome     TEXT NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_query_history_ts ON query_history(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (query history)")
	}

	return nil
}
