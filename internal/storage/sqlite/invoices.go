package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
)

// CreateInvoice persists a new invoice and its sharers.
// The creditor and every sharer must have joined the open festival.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.CreatedAt == 0 {
		invoice.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireOpenFestival(ctx, tx, invoice.FestivalID); err != nil {
			return err
		}

		members := append([]string{invoice.CreditorID}, invoice.SharerIDs...)
		for _, id := range members {
			ok, err := isParticipant(ctx, tx, invoice.FestivalID, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("member %s: %w", id, storage.ErrNotParticipant)
			}
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO invoices (id, festival_id, title, amount, creditor_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			invoice.ID, invoice.FestivalID, invoice.Title, invoice.Amount, invoice.CreditorID, invoice.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		for pos, sharer := range invoice.SharerIDs {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO invoice_sharers (invoice_id, member_id, position) VALUES (?, ?, ?)",
				invoice.ID, sharer, pos,
			)
			if err != nil {
				return fmt.Errorf("failed to insert invoice sharer: %w", err)
			}
		}

		return touchFestival(ctx, tx, invoice.FestivalID, models.UpdateNewInvoice)
	})
}

// ListInvoices retrieves the invoices of a festival, including sharers.
func (s *SQLiteStore) ListInvoices(ctx context.Context, festivalID string) ([]models.Invoice, error) {
	if _, err := getFestival(ctx, s.db, festivalID); err != nil {
		return nil, err
	}
	return listInvoices(ctx, s.db, festivalID)
}

func listInvoices(ctx context.Context, q querier, festivalID string) ([]models.Invoice, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, festival_id, title, amount, creditor_id, created_at
		 FROM invoices WHERE festival_id = ? ORDER BY created_at, rowid`,
		festivalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	index := make(map[string]int)
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.FestivalID, &inv.Title, &inv.Amount, &inv.CreditorID, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		index[inv.ID] = len(invoices)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	rows.Close()

	sharerRows, err := q.QueryContext(ctx,
		`SELECT s.invoice_id, s.member_id FROM invoice_sharers s
		 JOIN invoices i ON i.id = s.invoice_id
		 WHERE i.festival_id = ? ORDER BY s.invoice_id, s.position`,
		festivalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice sharers: %w", err)
	}
	defer sharerRows.Close()

	for sharerRows.Next() {
		var invoiceID, memberID string
		if err := sharerRows.Scan(&invoiceID, &memberID); err != nil {
			return nil, fmt.Errorf("failed to scan invoice sharer: %w", err)
		}
		if i, ok := index[invoiceID]; ok {
			invoices[i].SharerIDs = append(invoices[i].SharerIDs, memberID)
		}
	}
	if err := sharerRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice sharers: %w", err)
	}

	return invoices, nil
}

// DeleteInvoice removes an invoice of an open festival.
func (s *SQLiteStore) DeleteInvoice(ctx context.Context, invoiceID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var festivalID string
		err := tx.QueryRowContext(ctx, "SELECT festival_id FROM invoices WHERE id = ?", invoiceID).Scan(&festivalID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("invoice %s: %w", invoiceID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if err := requireOpenFestival(ctx, tx, festivalID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return touchFestival(ctx, tx, festivalID, models.UpdateInvoiceDeleted)
	})
}
