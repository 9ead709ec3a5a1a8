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

// CreateMember inserts a new member.
func (s *Store) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO members (id, name, created_at) VALUES ($1, $2, $3)",
		member.ID, member.Name, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	member.PartnerID = ""
	return nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	return getMember(ctx, s.pool, memberID)
}

func scanMember(row pgx.Row) (*models.Member, error) {
	member := &models.Member{}
	var partnerID pgtype.Text
	if err := row.Scan(&member.ID, &member.Name, &partnerID, &member.CreatedAt); err != nil {
		return nil, err
	}
	member.PartnerID = partnerID.String
	return member, nil
}

func getMember(ctx context.Context, q querier, memberID string) (*models.Member, error) {
	member, err := scanMember(q.QueryRow(ctx,
		"SELECT id, name, partner_id, created_at FROM members WHERE id = $1", memberID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// ListMembers retrieves all members ordered by name.
func (s *Store) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name, partner_id, created_at FROM members ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// SetPartner pairs two members. Previous partners of either side are released.
func (s *Store) SetPartner(ctx context.Context, memberID, partnerID string) error {
	if memberID == partnerID {
		return storage.ErrSelfPartner
	}

	return s.inTx(ctx, func(tx pgx.Tx) error {
		for _, id := range []string{memberID, partnerID} {
			if _, err := getMember(ctx, tx, id); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx,
			"UPDATE members SET partner_id = NULL WHERE id = ANY($1) OR partner_id = ANY($1)",
			[]string{memberID, partnerID},
		); err != nil {
			return fmt.Errorf("failed to release previous partners: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE members SET partner_id = CASE WHEN id = $1 THEN $2 ELSE $1 END
			 WHERE id IN ($1, $2)`,
			memberID, partnerID,
		); err != nil {
			return fmt.Errorf("failed to set partner: %w", err)
		}
		return nil
	})
}

// ClearPartner removes the pairing on both sides.
func (s *Store) ClearPartner(ctx context.Context, memberID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := getMember(ctx, tx, memberID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"UPDATE members SET partner_id = NULL WHERE id = $1 OR partner_id = $1",
			memberID,
		); err != nil {
			return fmt.Errorf("failed to clear partner: %w", err)
		}
		return nil
	})
}
