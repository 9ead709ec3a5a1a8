package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
)

// WithFestival runs fn in an immediate transaction, which holds the SQLite
// write lock until commit or rollback.
func (s *SQLiteStore) WithFestival(ctx context.Context, festivalID string, fn func(context.Context, storage.FestivalTx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getFestival(ctx, tx, festivalID); err != nil {
			return err
		}
		return fn(ctx, &festivalTx{tx: tx, festivalID: festivalID})
	})
}

// LoadFestival reads the festival aggregate in a deferred transaction on a
// dedicated connection. Deferred transactions only take a shared lock, so
// readers proceed while a close holds the write lock.
func (s *SQLiteStore) LoadFestival(ctx context.Context, festivalID string) (*models.Festival, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	// BeginTx would start an immediate transaction because of _txlock.
	if _, err := conn.ExecContext(ctx, "BEGIN DEFERRED"); err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")

	return loadFestival(ctx, conn, festivalID)
}

type festivalTx struct {
	tx         *sql.Tx
	festivalID string
}

// Load returns the festival with participants, invoices and transfers.
func (t *festivalTx) Load(ctx context.Context) (*models.Festival, error) {
	return loadFestival(ctx, t.tx, t.festivalID)
}

// loadFestival reads the festival aggregate through q.
func loadFestival(ctx context.Context, q querier, festivalID string) (*models.Festival, error) {
	f, err := getFestival(ctx, q, festivalID)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT m.id, m.name, m.partner_id FROM participants p
		 JOIN members m ON m.id = p.member_id
		 WHERE p.festival_id = ? ORDER BY p.joined_at, p.rowid`,
		festivalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p := &models.Participant{}
		var partnerID sql.NullString
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
	for i := range transfers {
		tr := &transfers[i]
		if tr.ID == "" {
			tr.ID = uuid.New().String()
		}
		tr.FestivalID = t.festivalID
		tr.CreatedAt = now

		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO transfers (id, festival_id, recipient_id, payer_id, amount, position, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tr.ID, tr.FestivalID, tr.RecipientID, tr.PayerID, tr.Amount, i, tr.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}
	return nil
}

// DeleteTransfers removes every transfer of the festival.
func (t *festivalTx) DeleteTransfers(ctx context.Context) (int, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM transfers WHERE festival_id = ?", t.festivalID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transfers: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted transfers: %w", err)
	}
	return int(n), nil
}

// SetClosed updates the closed flag and the lifecycle event.
func (t *festivalTx) SetClosed(ctx context.Context, closed bool, updateInfo string) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE festivals SET is_closed = ?, update_info = ?, modified_at = ? WHERE id = ?",
		closed, updateInfo, time.Now().Unix(), t.festivalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update festival state: %w", err)
	}
	return nil
}
