package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/glebk/retro-bot/internal/domain"
)

// DraftRepository implements domain.DraftRepository using SQLite
type DraftRepository struct {
	db *Database
}

// NewDraftRepository creates a new DraftRepository
func NewDraftRepository(db *Database) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save stores the draft, replacing any previous one for the user
func (r *DraftRepository) Save(draft *domain.Draft) error {
	query := `
		INSERT INTO drafts (user_id, good_points, improvements, learnings, action_item,
			emotion_score, emotion_reason, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			good_points = excluded.good_points,
			improvements = excluded.improvements,
			learnings = excluded.learnings,
			action_item = excluded.action_item,
			emotion_score = excluded.emotion_score,
			emotion_reason = excluded.emotion_reason,
			saved_at = excluded.saved_at
	`

	now := time.Now()
	_, err := r.db.GetDB().Exec(query,
		draft.UserID,
		draft.GoodPoints,
		draft.Improvements,
		draft.Learnings,
		draft.ActionItem,
		nullableInt(draft.EmotionScore),
		draft.EmotionReason,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	draft.SavedAt = now

	return nil
}

// Get retrieves the user's draft
func (r *DraftRepository) Get(userID int64) (*domain.Draft, error) {
	query := `
		SELECT user_id, good_points, improvements, learnings, action_item,
			emotion_score, emotion_reason, saved_at
		FROM drafts
		WHERE user_id = ?
	`

	draft := &domain.Draft{}
	var score sql.NullInt64

	err := r.db.GetDB().QueryRow(query, userID).Scan(
		&draft.UserID,
		&draft.GoodPoints,
		&draft.Improvements,
		&draft.Learnings,
		&draft.ActionItem,
		&score,
		&draft.EmotionReason,
		&draft.SavedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	draft.EmotionScore = intPtr(score)
	return draft, nil
}

// Delete removes the user's draft if there is one
func (r *DraftRepository) Delete(userID int64) error {
	if _, err := r.db.GetDB().Exec(`DELETE FROM drafts WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
