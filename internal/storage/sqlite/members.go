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

// CreateMember inserts a new member into the database.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, name, partner_id, created_at) VALUES (?, ?, NULL, ?)",
		member.ID, member.Name, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	member.PartnerID = ""
	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	return getMember(ctx, s.db, memberID)
}

func getMember(ctx context.Context, q querier, memberID string) (*models.Member, error) {
	member := &models.Member{}
	var partnerID sql.NullString
	err := q.QueryRowContext(ctx,
		"SELECT id, name, partner_id, created_at FROM members WHERE id = ?",
		memberID,
	).Scan(&member.ID, &member.Name, &partnerID, &member.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	member.PartnerID = partnerID.String
	return member, nil
}

// ListMembers retrieves all members ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, partner_id, created_at FROM members ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var partnerID sql.NullString
		if err := rows.Scan(&member.ID, &member.Name, &partnerID, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.PartnerID = partnerID.String
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// SetPartner pairs two members. Previous partners of either side are released.
func (s *SQLiteStore) SetPartner(ctx context.Context, memberID, partnerID string) error {
	if memberID == partnerID {
		return storage.ErrSelfPartner
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range []string{memberID, partnerID} {
			if _, err := getMember(ctx, tx, id); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE members SET partner_id = NULL WHERE id IN (?, ?) OR partner_id IN (?, ?)",
			memberID, partnerID, memberID, partnerID,
		); err != nil {
			return fmt.Errorf("failed to release previous partners: %w", err)
		}

		pairs := [][2]string{{memberID, partnerID}, {partnerID, memberID}}
		for _, pair := range pairs {
			if _, err := tx.ExecContext(ctx,
				"UPDATE members SET partner_id = ? WHERE id = ?",
				pair[1], pair[0],
			); err != nil {
				return fmt.Errorf("failed to set partner: %w", err)
			}
		}
		return nil
	})
}

// ClearPartner removes the pairing on both sides.
func (s *SQLiteStore) ClearPartner(ctx context.Context, memberID string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := getMember(ctx, tx, memberID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE members SET partner_id = NULL WHERE id = ? OR partner_id = ?",
			memberID, memberID,
		)
		if err != nil {
			return fmt.Errorf("failed to clear partner: %w", err)
		}
		return nil
	})
}
