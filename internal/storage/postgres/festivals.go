package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mmynk/myfestival/internal/models"
	"github.com/mmynk/myfestival/internal/storage"
)

const festivalColumns = "id, title, info, creator_id, start_date, end_date, is_closed, update_info, modified_at"

// CreateFestival persists a new, open festival.
func (s *Store) CreateFestival(ctx context.Context, festival *models.Festival) error {
	if festival.ID == "" {
		festival.ID = uuid.New().String()
	}
	festival.ModifiedAt = time.Now().Unix()
	festival.Closed = false
	festival.UpdateInfo = models.UpdateFestivalCreated

	creator := pgtype.Text{String: festival.CreatorID, Valid: festival.CreatorID != ""}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO festivals (`+festivalColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)`,
		festival.ID, festival.Title, festival.Info, creator,
		festival.StartDate, festival.EndDate, festival.UpdateInfo, festival.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert festival: %w", err)
	}
	return nil
}

func scanFestival(row pgx.Row) (*models.Festival, error) {
	f := &models.Festival{}
	var creator pgtype.Text
	err := row.Scan(&f.ID, &f.Title, &f.Info, &creator, &f.StartDate, &f.EndDate,
		&f.Closed, &f.UpdateInfo, &f.ModifiedAt)
	if err != nil {
		return nil, err
	}
	f.CreatorID = creator.String
	return f, nil
}

// getFestival reads the festival row. With lock set the row is held
// FOR UPDATE until the surrounding transaction ends.
func getFestival(ctx context.Context, q querier, festivalID string, lock bool) (*models.Festival, error) {
	query := "SELECT " + festivalColumns + " FROM festivals WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	f, err := scanFestival(q.QueryRow(ctx, query, festivalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("festival %s: %w", festivalID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get festival: %w", err)
	}
	return f, nil
}

// GetFestival retrieves a festival by ID without its aggregate collections.
func (s *Store) GetFestival(ctx context.Context, festivalID string) (*models.Festival, error) {
	return getFestival(ctx, s.pool, festivalID, false)
}

// ListFestivals retrieves all festivals, most recent start date first.
func (s *Store) ListFestivals(ctx context.Context) ([]*models.Festival, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+festivalColumns+" FROM festivals ORDER BY start_date DESC, title")
	if err != nil {
		return nil, fmt.Errorf("failed to list festivals: %w", err)
	}
	defer rows.Close()

	var festivals []*models.Festival
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan festival: %w", err)
		}
		festivals = append(festivals, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate festivals: %w", err)
	}
	return festivals, nil
}

// JoinFestival adds the member to the festival participants.
func (s *Store) JoinFestival(ctx context.Context, festivalID, memberID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireOpenFestival(ctx, tx, festivalID); err != nil {
			return err
		}
		if _, err := getMember(ctx, tx, memberID); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO participants (festival_id, member_id, joined_at) VALUES ($1, $2, $3)
			 ON CONFLICT (festival_id, member_id) DO NOTHING`,
			festivalID, memberID, time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		return touchFestival(ctx, tx, festivalID, models.UpdateUserJoined)
	})
}

// LeaveFestival removes the member from the festival participants.
func (s *Store) LeaveFestival(ctx context.Context, festivalID, memberID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireOpenFestival(ctx, tx, festivalID); err != nil {
			return err
		}

		var inUse bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (
			   SELECT 1 FROM invoices i
			   WHERE i.festival_id = $1
			     AND (i.creditor_id = $2
			          OR EXISTS (SELECT 1 FROM invoice_sharers s WHERE s.invoice_id = i.id AND s.member_id = $2)))`,
			festivalID, memberID,
		).Scan(&inUse)
		if err != nil {
			return fmt.Errorf("failed to check invoice references: %w", err)
		}
		if inUse {
			return fmt.Errorf("member %s: %w", memberID, storage.ErrParticipantInUse)
		}

		tag, err := tx.Exec(ctx,
			"DELETE FROM participants WHERE festival_id = $1 AND member_id = $2",
			festivalID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("participant %s: %w", memberID, storage.ErrNotFound)
		}
		return touchFestival(ctx, tx, festivalID, models.UpdateUserLeft)
	})
}
