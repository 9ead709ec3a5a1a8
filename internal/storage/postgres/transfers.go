package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/myfestival/internal/models"
)

// ListTransfers retrieves the transfers of a festival in generation order.
func (s *Store) ListTransfers(ctx context.Context, festivalID string) ([]models.Transfer, error) {
	if _, err := getFestival(ctx, s.pool, festivalID, false); err != nil {
		return nil, err
	}
	return listTransfers(ctx, s.pool, festivalID)
}

func listTransfers(ctx context.Context, q querier, festivalID string) ([]models.Transfer, error) {
	rows, err := q.Query(ctx,
		`SELECT id, festival_id, recipient_id, payer_id, amount::text, created_at
		 FROM transfers WHERE festival_id = $1 ORDER BY position`,
		festivalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		var amount string
		if err := rows.Scan(&t.ID, &t.FestivalID, &t.RecipientID, &t.PayerID, &amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse transfer amount: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}
	return transfers, nil
}
