package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/glebk/retro-bot/internal/domain"
)

const retrospectiveColumns = `id, user_id, session_label, session_index, chat_id, message_id,
		good_points, improvements, learnings, action_item, emotion_score, emotion_reason,
		created_at, updated_at`

// RetrospectiveRepository implements domain.RetrospectiveRepository using SQLite
type RetrospectiveRepository struct {
	db *Database
}

// NewRetrospectiveRepository creates a new RetrospectiveRepository
func NewRetrospectiveRepository(db *Database) *RetrospectiveRepository {
	return &RetrospectiveRepository{db: db}
}

// Create stores a new retrospective
func (r *RetrospectiveRepository) Create(retro *domain.Retrospective) error {
	query := `
		INSERT INTO retrospectives (user_id, session_label, session_index, chat_id, message_id,
			good_points, improvements, learnings, action_item, emotion_score, emotion_reason,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.GetDB().Exec(query,
		retro.UserID,
		retro.SessionLabel,
		retro.SessionIndex,
		retro.ChatID,
		retro.MessageID,
		retro.GoodPoints,
		retro.Improvements,
		retro.Learnings,
		retro.ActionItem,
		nullableInt(retro.EmotionScore),
		retro.EmotionReason,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create retrospective: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create retrospective: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get retrospective ID: %w", err)
	}

	retro.ID = id
	retro.CreatedAt = now
	retro.UpdatedAt = now

	return nil
}

// GetByID retrieves a retrospective by ID
func (r *RetrospectiveRepository) GetByID(id int64) (*domain.Retrospective, error) {
	query := `SELECT ` + retrospectiveColumns + ` FROM retrospectives WHERE id = ?`

	retro, err := scanRetrospective(r.db.GetDB().QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get retrospective: %w", err)
	}

	return retro, nil
}

// GetByUser retrieves a user's retrospectives, newest first
func (r *RetrospectiveRepository) GetByUser(userID int64) ([]*domain.Retrospective, error) {
	query := `SELECT ` + retrospectiveColumns + `
		FROM retrospectives
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	return r.list(query, userID)
}

// HasSubmitted reports whether the user has a retrospective for the label
func (r *RetrospectiveRepository) HasSubmitted(userID int64, sessionLabel string) (bool, error) {
	query := `SELECT 1 FROM retrospectives WHERE user_id = ? AND session_label = ? LIMIT 1`

	var one int
	err := r.db.GetDB().QueryRow(query, userID, sessionLabel).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}

	return true, nil
}

// SubmittedLabels returns the set of session labels the user has submitted for
func (r *RetrospectiveRepository) SubmittedLabels(userID int64) (map[string]bool, error) {
	rows, err := r.db.GetDB().Query(`SELECT DISTINCT session_label FROM retrospectives WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submitted labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[string]bool)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels[label] = true
	}

	return labels, rows.Err()
}

// Update overwrites the answers of a retrospective
func (r *RetrospectiveRepository) Update(retro *domain.Retrospective) error {
	query := `
		UPDATE retrospectives
		SET good_points = ?, improvements = ?, learnings = ?, action_item = ?,
			emotion_score = ?, emotion_reason = ?, chat_id = ?, message_id = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()
	result, err := r.db.GetDB().Exec(query,
		retro.GoodPoints,
		retro.Improvements,
		retro.Learnings,
		retro.ActionItem,
		nullableInt(retro.EmotionScore),
		retro.EmotionReason,
		retro.ChatID,
		retro.MessageID,
		now,
		retro.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update retrospective: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update retrospective: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update retrospective %d: %w", retro.ID, sql.ErrNoRows)
	}

	retro.UpdatedAt = now

	return nil
}

// Delete removes a retrospective and reports whether a row was deleted
func (r *RetrospectiveRepository) Delete(id int64) (bool, error) {
	result, err := r.db.GetDB().Exec(`DELETE FROM retrospectives WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete retrospective: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete retrospective: %w", err)
	}

	return affected > 0, nil
}

// GetLatest retrieves the most recent retrospectives across all users
func (r *RetrospectiveRepository) GetLatest(limit int) ([]*domain.Retrospective, error) {
	query := `SELECT ` + retrospectiveColumns + `
		FROM retrospectives
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	return r.list(query, limit)
}

func (r *RetrospectiveRepository) list(query string, args ...any) ([]*domain.Retrospective, error) {
	rows, err := r.db.GetDB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get retrospectives: %w", err)
	}
	defer rows.Close()

	var retros []*domain.Retrospective

	for rows.Next() {
		retro, err := scanRetrospective(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan retrospective: %w", err)
		}
		retros = append(retros, retro)
	}

	return retros, rows.Err()
}

func scanRetrospective(s scanner) (*domain.Retrospective, error) {
	retro := &domain.Retrospective{}
	var score sql.NullInt64

	err := s.Scan(
		&retro.ID,
		&retro.UserID,
		&retro.SessionLabel,
		&retro.SessionIndex,
		&retro.ChatID,
		&retro.MessageID,
		&retro.GoodPoints,
		&retro.Improvements,
		&retro.Learnings,
		&retro.ActionItem,
		&score,
		&retro.EmotionReason,
		&retro.CreatedAt,
		&retro.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	retro.EmotionScore = intPtr(score)
	return retro, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedrv.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
