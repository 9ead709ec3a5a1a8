// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/myfestival/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
//
// Transactions start with BEGIN IMMEDIATE so that a festival being settled
// holds the database write lock for the whole close or reopen.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// inTx runs fn in a transaction, committing on success.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// touchFestival records a lifecycle event on the festival.
func touchFestival(ctx context.Context, q querier, festivalID, updateInfo string) error {
	_, err := q.ExecContext(ctx,
		"UPDATE festivals SET update_info = ?, modified_at = ? WHERE id = ?",
		updateInfo, time.Now().Unix(), festivalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update festival: %w", err)
	}
	return nil
}

// requireOpenFestival returns storage.ErrNotFound or storage.ErrFestivalClosed
// unless the festival exists and is open.
func requireOpenFestival(ctx context.Context, q querier, festivalID string) error {
	var closed bool
	err := q.QueryRowContext(ctx, "SELECT is_closed FROM festivals WHERE id = ?", festivalID).Scan(&closed)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("festival %s: %w", festivalID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get festival: %w", err)
	}
	if closed {
		return fmt.Errorf("festival %s: %w", festivalID, storage.ErrFestivalClosed)
	}
	return nil
}

func isParticipant(ctx context.Context, q querier, festivalID, memberID string) (bool, error) {
	var exists int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM participants WHERE festival_id = ? AND member_id = ?",
		festivalID, memberID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return true, nil
}
