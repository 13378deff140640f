package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/hpungsan/clarity/internal/errors"
)

// SQLite stores records in the `records` table created by db.Init.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an initialized database handle. Close closes the handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Get(ctx context.Context, key string) (*Record, error) {
	query := `SELECT value, version, updated_at FROM records WHERE key = ?`

	rec := &Record{Key: key}
	err := s.db.QueryRowContext(ctx, query, key).Scan(&rec.Value, &rec.Version, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(key)
	}
	if err != nil {
		return nil, wrapSQLError(ctx, "get", err)
	}
	return rec, nil
}

// Set upserts key, bumping the version when the row already exists.
func (s *SQLite) Set(ctx context.Context, key, value string) (*Record, error) {
	now := time.Now().UnixMilli()

	query := `
		INSERT INTO records (key, value, version, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = records.version + 1,
			updated_at = excluded.updated_at
		RETURNING version
	`

	rec := &Record{Key: key, Value: value, UpdatedAt: now}
	if err := s.db.QueryRowContext(ctx, query, key, value, now).Scan(&rec.Version); err != nil {
		return nil, wrapSQLError(ctx, "set", err)
	}
	return rec, nil
}

func (s *SQLite) CompareAndSwap(ctx context.Context, key, value string, expectVersion int64) (*Record, error) {
	now := time.Now().UnixMilli()

	var (
		result sql.Result
		err    error
	)
	if expectVersion == 0 {
		result, err = s.db.ExecContext(ctx,
			`INSERT INTO records (key, value, version, updated_at) VALUES (?, ?, 1, ?) ON CONFLICT(key) DO NOTHING`,
			key, value, now)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE records SET value = ?, version = version + 1, updated_at = ? WHERE key = ? AND version = ?`,
			value, now, key, expectVersion)
	}
	if err != nil {
		return nil, wrapSQLError(ctx, "compare-and-swap", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, wrapSQLError(ctx, "compare-and-swap", err)
	}
	if rowsAffected == 0 {
		var current int64
		// Best-effort detail for the conflict; absent rows leave current at 0.
		_ = s.db.QueryRowContext(ctx, `SELECT version FROM records WHERE key = ?`, key).Scan(&current)
		return nil, conflict(key, expectVersion, current)
	}

	return &Record{Key: key, Value: value, Version: expectVersion + 1, UpdatedAt: now}, nil
}

// Remove deletes keys in a single transaction.
func (s *SQLite) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapSQLError(ctx, "remove", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, k); err != nil {
			return wrapSQLError(ctx, "remove", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapSQLError(ctx, "remove", err)
	}
	return nil
}

func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `SELECT key FROM records WHERE substr(key, 1, length(?)) = ? ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query, prefix, prefix)
	if err != nil {
		return nil, wrapSQLError(ctx, "keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, wrapSQLError(ctx, "keys", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQLError(ctx, "keys", err)
	}
	return keys, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// wrapSQLError maps context cancellation to CANCELLED and everything else to
// STORAGE_UNAVAILABLE.
func wrapSQLError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewCancelled(op)
	}
	return errors.NewStorageUnavailable(err)
}
