package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/clarity/internal/config"
	_ "modernc.org/sqlite"
)

// FileName is the SQLite database file inside the base directory.
const FileName = "clarity.db"

// migrations are applied in order; migrations[i] takes user_version i to i+1.
// Append only.
var migrations = []string{
	// key-value records with an optimistic version counter
	`CREATE TABLE IF NOT EXISTS records (
	  key        TEXT PRIMARY KEY,
	  value      TEXT NOT NULL,
	  version    INTEGER NOT NULL,
	  updated_at INTEGER NOT NULL
	)`,
}

// CurrentSchemaVersion is the user_version after all migrations ran.
var CurrentSchemaVersion = len(migrations)

// Init opens (creating if needed) baseDir/clarity.db in WAL mode and brings
// its schema up to date.
func Init(baseDir string) (*sql.DB, error) {
	if err := EnsureExportsDir(baseDir); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(baseDir, FileName)
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, step := range []func(*sql.DB) error{verifyWALMode, migrate} {
		if err := step(conn); err != nil {
			conn.Close()
			return nil, err
		}
	}

	_ = os.Chmod(dbPath, 0600)
	return conn, nil
}

// EnsureExportsDir creates baseDir and baseDir/exports, owner-only. Every
// store backend calls it so default export paths always resolve.
func EnsureExportsDir(baseDir string) error {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, "exports")} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		_ = os.Chmod(dir, 0700)
	}
	return nil
}

// ConfigurePool applies the non-zero pool limits from cfg.
func ConfigurePool(conn *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate runs every migration above the stored user_version, each in its
// own transaction together with the version bump.
func migrate(conn *sql.DB) error {
	version, err := GetUserVersion(conn)
	if err != nil {
		return err
	}
	for i := version; i < len(migrations); i++ {
		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version=%d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: failed to set user_version: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

func verifyWALMode(conn *sql.DB) error {
	var mode string
	if err := conn.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", mode)
	}
	return nil
}

// GetUserVersion returns the user_version pragma.
func GetUserVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the user_version pragma.
func SetUserVersion(conn *sql.DB, version int) error {
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
