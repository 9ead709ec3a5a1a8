package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/myfestival/internal/models"
)

// ListTransfers retrieves the transfers of a festival in generation order.
func (s *SQLiteStore) ListTransfers(ctx context.Context, festivalID string) ([]models.Transfer, error) {
	if _, err := getFestival(ctx, s.db, festivalID); err != nil {
		return nil, err
	}
	return listTransfers(ctx, s.db, festivalID)
}

func listTransfers(ctx context.Context, q querier, festivalID string) ([]models.Transfer, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, festival_id, recipient_id, payer_id, amount, created_at
		 FROM transfers WHERE festival_id = ? ORDER BY position`,
		festivalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.FestivalID, &t.RecipientID, &t.PayerID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return transfers, nil
}
