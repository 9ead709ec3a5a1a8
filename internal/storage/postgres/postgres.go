// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/myfestival/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New runs the embedded migrations and opens a connection pool.
func New(ctx context.Context, dsn string) (*Store, error) {
	if err := RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// inTx runs fn in a transaction, committing on success.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func touchFestival(ctx context.Context, q querier, festivalID, updateInfo string) error {
	_, err := q.Exec(ctx,
		"UPDATE festivals SET update_info = $1, modified_at = $2 WHERE id = $3",
		updateInfo, time.Now().Unix(), festivalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update festival: %w", err)
	}
	return nil
}

// requireOpenFestival locks the festival row and checks it is open.
func requireOpenFestival(ctx context.Context, q querier, festivalID string) error {
	var closed bool
	err := q.QueryRow(ctx, "SELECT is_closed FROM festivals WHERE id = $1 FOR UPDATE", festivalID).Scan(&closed)
	if errors.Is(err, pgx.ErrNoRows) {
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
	var exists bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM participants WHERE festival_id = $1 AND member_id = $2)",
		festivalID, memberID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}
