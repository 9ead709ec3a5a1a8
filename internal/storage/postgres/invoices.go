package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
)

// CreateInvoice persists a new invoice and its sharers.
// The creditor and every sharer must have joined the open festival.
func (s *Store) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.CreatedAt == 0 {
		invoice.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
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

		_, err := tx.Exec(ctx,
			`INSERT INTO invoices (id, festival_id, title, amount, creditor_id, created_at)
			 VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
			invoice.ID, invoice.FestivalID, invoice.Title, invoice.Amount.String(), invoice.CreditorID, invoice.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		batch := &pgx.Batch{}
		for pos, sharer := range invoice.SharerIDs {
			batch.Queue(
				"INSERT INTO invoice_sharers (invoice_id, member_id, position) VALUES ($1, $2, $3)",
				invoice.ID, sharer, pos,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert invoice sharers: %w", err)
		}

		return touchFestival(ctx, tx, invoice.FestivalID, models.UpdateNewInvoice)
	})
}

// ListInvoices retrieves the invoices of a festival, including sharers.
func (s *Store) ListInvoices(ctx context.Context, festivalID string) ([]models.Invoice, error) {
	if _, err := getFestival(ctx, s.pool, festivalID, false); err != nil {
		return nil, err
	}
	return listInvoices(ctx, s.pool, festivalID)
}

func listInvoices(ctx context.Context, q querier, festivalID string) ([]models.Invoice, error) {
	rows, err := q.Query(ctx,
		`SELECT id, festival_id, title, amount::text, creditor_id, created_at
		 FROM invoices WHERE festival_id = $1 ORDER BY seq`,
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
		var amount string
		if err := rows.Scan(&inv.ID, &inv.FestivalID, &inv.Title, &amount, &inv.CreditorID, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		if inv.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse invoice amount: %w", err)
		}
		index[inv.ID] = len(invoices)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	rows.Close()

	sharerRows, err := q.Query(ctx,
		`SELECT s.invoice_id, s.member_id FROM invoice_sharers s
		 JOIN invoices i ON i.id = s.invoice_id
		 WHERE i.festival_id = $1 ORDER BY s.invoice_id, s.position`,
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
func (s *Store) DeleteInvoice(ctx context.Context, invoiceID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var festivalID string
		err := tx.QueryRow(ctx, "SELECT festival_id FROM invoices WHERE id = $1", invoiceID).Scan(&festivalID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("invoice %s: %w", invoiceID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}
		if err := requireOpenFestival(ctx, tx, festivalID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, "DELETE FROM invoices WHERE id = $1", invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return touchFestival(ctx, tx, festivalID, models.UpdateInvoiceDeleted)
	})
}
