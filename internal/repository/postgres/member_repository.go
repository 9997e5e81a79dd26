package postgres

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/glebk/retro-bot/internal/domain"
)

// MemberRepository implements domain.MemberRepository using PostgreSQL
type MemberRepository struct {
	db *Database
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *Database) *MemberRepository {
	return &MemberRepository{db: db}
}

// Upsert creates the member or refreshes their names
func (r *MemberRepository) Upsert(member *domain.Member) error {
	query := `
		INSERT INTO members (id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = now()
		RETURNING created_at, updated_at
	`

	err := r.db.GetDB().QueryRow(query,
		member.ID,
		member.Username,
		member.FirstName,
		member.LastName,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(id int64) (*domain.Member, error) {
	query := `
		SELECT id, username, first_name, last_name, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	member, err := scanMember(r.db.GetDB().QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// GetByIDs retrieves the known members among ids, keyed by ID
func (r *MemberRepository) GetByIDs(ids []int64) (map[int64]*domain.Member, error) {
	members := make(map[int64]*domain.Member, len(ids))
	if len(ids) == 0 {
		return members, nil
	}

	query := `
		SELECT id, username, first_name, last_name, created_at, updated_at
		FROM members
		WHERE id = ANY($1)
	`

	rows, err := r.db.GetDB().Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[member.ID] = member
	}

	return members, rows.Err()
}

func scanMember(s scanner) (*domain.Member, error) {
	member := &domain.Member{}
	err := s.Scan(
		&member.ID,
		&member.Username,
		&member.FirstName,
		&member.LastName,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return member, nil
}
