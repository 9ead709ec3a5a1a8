package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
)

// WithFestival runs fn in a transaction holding the festival row FOR UPDATE,
// so concurrent closes and reopens of one festival run one after another.
func (s *Store) WithFestival(ctx context.Context, festivalID string, fn func(context.Context, storage.FestivalTx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := getFestival(ctx, tx, festivalID, true); err != nil {
			return err
		}
		return fn(ctx, &festivalTx{tx: tx, festivalID: festivalID})
	})
}

// LoadFestival reads the festival aggregate in a read-only repeatable-read
// transaction, so all collections come from one snapshot and no row is locked.
func (s *Store) LoadFestival(ctx context.Context, festivalID string) (*models.Festival, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	return loadFestival(ctx, tx, festivalID)
}

type festivalTx struct {
	tx         pgx.Tx
	festivalID string
}

// Load returns the festival with participants, invoices and transfers.
func (t *festivalTx) Load(ctx context.Context) (*models.Festival, error) {
	return loadFestival(ctx, t.tx, t.festivalID)
}

// loadFestival reads the festival aggregate through q without row locks.
func loadFestival(ctx context.Context, q querier, festivalID string) (*models.Festival, error) {
	f, err := getFestival(ctx, q, festivalID, false)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx,
		`SELECT m.id, m.name, m.partner_id FROM participants p
		 JOIN members m ON m.id = p.member_id
		 WHERE p.festival_id = $1 ORDER BY p.seq`,
		festivalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Participant{}
		var partnerID pgtype.Text
		if err := rows.Scan(&p.ID, &p.Name, &partnerID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.PartnerID = partnerID.String
		f.Participants = append(f.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	rows.Close()

	if f.Invoices, err = listInvoices(ctx, q, festivalID); err != nil {
		return nil, err
	}
	if f.Transfers, err = listTransfers(ctx, q, festivalID); err != nil {
		return nil, err
	}
	return f, nil
}

// InsertTransfers persists the transfers in order.
func (t *festivalTx) InsertTransfers(ctx context.Context, transfers []models.Transfer) error {
	now := time.Now().Unix()
	batch := &pgx.Batch{}
	for i := range transfers {
		tr := &transfers[i]
		if tr.ID == "" {
			tr.ID = uuid.New().String()
		}
		tr.FestivalID = t.festivalID
		tr.CreatedAt = now

		batch.Queue(
			`INSERT INTO transfers (id, festival_id, recipient_id, payer_id, amount, position, created_at)
			 VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
			tr.ID, tr.FestivalID, tr.RecipientID, tr.PayerID, tr.Amount.String(), i, tr.CreatedAt,
		)
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert transfers: %w", err)
	}
	return nil
}

// DeleteTransfers removes every transfer of the festival.
func (t *festivalTx) DeleteTransfers(ctx context.Context) (int, error) {
	tag, err := t.tx.Exec(ctx, "DELETE FROM transfers WHERE festival_id = $1", t.festivalID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transfers: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SetClosed updates the closed flag and the lifecycle event.
func (t *festivalTx) SetClosed(ctx context.Context, closed bool, updateInfo string) error {
	_, err := t.tx.Exec(ctx,
		"UPDATE festivals SET is_closed = $1, update_info = $2, modified_at = $3 WHERE id = $4",
		closed, updateInfo, time.Now().Unix(), t.festivalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update festival state: %w", err)
	}
	return nil
}
