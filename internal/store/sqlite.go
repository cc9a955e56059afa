package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/simplydispatch/driverslog/internal/domain"
	"github.com/simplydispatch/driverslog/migrations"
)

// SQLite is the on-device durable implementation of Store, backed by a
// single-file SQLite database.
type SQLite struct {
	db *sql.DB
}

// compile-time check: SQLite must satisfy Store.
var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if necessary) the cache database at path and
// applies any pending migrations. Use ":memory:" for an ephemeral cache.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.OpenSQLite: open: %w", err)
	}

	// SQLite allows a single writer; a second connection would only
	// trade errors for lock contention.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.OpenSQLite: ping: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.OpenSQLite: set dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.OpenSQLite: migrate: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key.
// Returns domain.ErrNotFound if the key has no value.
func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM cache WHERE key = ?`

	var value string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("store.SQLite.Get: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("store.SQLite.Get: %w", err)
	}
	return value, nil
}

// Set writes value under key, replacing any previous value.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	const q = `
		INSERT INTO cache (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
		    value      = excluded.value,
		    updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("store.SQLite.Set: %w", err)
	}
	return nil
}

// Remove deletes the value under key. Removing an absent key is not an
// error — the caller only cares that the key is gone.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM cache WHERE key = ?`

	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("store.SQLite.Remove: %w", err)
	}
	return nil
}
