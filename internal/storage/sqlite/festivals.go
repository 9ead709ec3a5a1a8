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

const festivalColumns = "id, title, info, creator_id, start_date, end_date, is_closed, update_info, modified_at"

// CreateFestival persists a new, open festival.
func (s *SQLiteStore) CreateFestival(ctx context.Context, festival *models.Festival) error {
	if festival.ID == "" {
		festival.ID = uuid.New().String()
	}
	festival.ModifiedAt = time.Now().Unix()
	festival.Closed = false
	festival.UpdateInfo = models.UpdateFestivalCreated

	var creator any
	if festival.CreatorID != "" {
		creator = festival.CreatorID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO festivals (`+festivalColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		festival.ID, festival.Title, festival.Info, creator,
		festival.StartDate, festival.EndDate, festival.UpdateInfo, festival.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert festival: %w", err)
	}
	return nil
}

// GetFestival retrieves a festival by ID without its aggregate collections.
func (s *SQLiteStore) GetFestival(ctx context.Context, festivalID string) (*models.Festival, error) {
	return getFestival(ctx, s.db, festivalID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFestival(row scanner) (*models.Festival, error) {
	f := &models.Festival{}
	var creator sql.NullString
	err := row.Scan(&f.ID, &f.Title, &f.Info, &creator, &f.StartDate, &f.EndDate,
		&f.Closed, &f.UpdateInfo, &f.ModifiedAt)
	if err != nil {
		return nil, err
	}
	f.CreatorID = creator.String
	return f, nil
}

func getFestival(ctx context.Context, q querier, festivalID string) (*models.Festival, error) {
	f, err := scanFestival(q.QueryRowContext(ctx,
		"SELECT "+festivalColumns+" FROM festivals WHERE id = ?", festivalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("festival %s: %w", festivalID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get festival: %w", err)
	}
	return f, nil
}

// ListFestivals retrieves all festivals, most recent start date first.
func (s *SQLiteStore) ListFestivals(ctx context.Context) ([]*models.Festival, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+festivalColumns+" FROM festivals ORDER BY start_date DESC, title",
	)
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
func (s *SQLiteStore) JoinFestival(ctx context.Context, festivalID, memberID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireOpenFestival(ctx, tx, festivalID); err != nil {
			return err
		}
		if _, err := getMember(ctx, tx, memberID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO participants (festival_id, member_id, joined_at) VALUES (?, ?, ?)",
			festivalID, memberID, time.Now().Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		return touchFestival(ctx, tx, festivalID, models.UpdateUserJoined)
	})
}

// LeaveFestival removes the member from the festival participants.
func (s *SQLiteStore) LeaveFestival(ctx context.Context, festivalID, memberID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := requireOpenFestival(ctx, tx, festivalID); err != nil {
			return err
		}

		var inUse int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM invoices i
			 WHERE i.festival_id = ?
			   AND (i.creditor_id = ?
			        OR EXISTS (SELECT 1 FROM invoice_sharers s WHERE s.invoice_id = i.id AND s.member_id = ?))`,
			festivalID, memberID, memberID,
		).Scan(&inUse)
		if err != nil {
			return fmt.Errorf("failed to check invoice references: %w", err)
		}
		if inUse > 0 {
			return fmt.Errorf("member %s: %w", memberID, storage.ErrParticipantInUse)
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM participants WHERE festival_id = ? AND member_id = ?",
			festivalID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete participant: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("participant %s: %w", memberID, storage.ErrNotFound)
		}
		return touchFestival(ctx, tx, festivalID, models.UpdateUserLeft)
	})
}
