package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebk/retro-bot/internal/domain"
)

// MemberRepository implements domain.MemberRepository using SQLite
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
		INSERT INTO members (id, username, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	_, err := r.db.GetDB().Exec(query,
		member.ID,
		member.Username,
		member.FirstName,
		member.LastName,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	member.UpdatedAt = now

	return nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(id int64) (*domain.Member, error) {
	query := `
		SELECT id, username, first_name, last_name, created_at, updated_at
		FROM members
		WHERE id = ?
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

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `
		SELECT id, username, first_name, last_name, created_at, updated_at
		FROM members
		WHERE id IN (` + placeholders + `)
	`

	rows, err := r.db.GetDB().Query(query, args...)
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
