package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siftlabs/sift/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/sift.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.sift.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Create exports subdirectory
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "sift.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS captures (
		  id                  TEXT PRIMARY KEY,
		  raw_text            TEXT NOT NULL,
		  classified_category TEXT,
		  confidence          REAL,
		  destination_table   TEXT,
		  destination_id      TEXT,
		  needs_review        INTEGER NOT NULL DEFAULT 0,
		  corrected           INTEGER NOT NULL DEFAULT 0,
		  correction_note     TEXT,
		  created_at          INTEGER NOT NULL,
		  updated_at          INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_captures_review
		ON captures(needs_review, created_at DESC);

		CREATE TABLE IF NOT EXISTS projects (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  name_norm  TEXT NOT NULL,
		  domain     TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_name_norm
		ON projects(name_norm);

		CREATE TABLE IF NOT EXISTS tasks (
		  id          TEXT PRIMARY KEY,
		  name        TEXT NOT NULL,
		  description TEXT,
		  priority    INTEGER,
		  project_id  TEXT REFERENCES projects(id),
		  created_at  INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS people (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  notes      TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS learnings (
		  id         TEXT PRIMARY KEY,
		  content    TEXT NOT NULL,
		  source     TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS health_logs (
		  id         TEXT PRIMARY KEY,
		  content    TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS content_items (
		  id         TEXT PRIMARY KEY,
		  title      TEXT NOT NULL,
		  url        TEXT,
		  notes      TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS questions (
		  id         TEXT PRIMARY KEY,
		  content    TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS knowledge_items (
		  id         TEXT PRIMARY KEY,
		  type       TEXT NOT NULL,
		  content    TEXT NOT NULL,
		  url        TEXT,
		  project_id TEXT,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS task_knowledge_links (
		  task_id           TEXT NOT NULL,
		  knowledge_item_id TEXT NOT NULL,
		  created_at        INTEGER NOT NULL,
		  PRIMARY KEY (task_id, knowledge_item_id)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
