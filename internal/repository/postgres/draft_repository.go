package postgres

import (
	"database/sql"
	"fmt"

	"github.com/glebk/retro-bot/internal/domain"
)

// DraftRepository implements domain.DraftRepository using PostgreSQL
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			good_points = EXCLUDED.good_points,
			improvements = EXCLUDED.improvements,
			learnings = EXCLUDED.learnings,
			action_item = EXCLUDED.action_item,
			emotion_score = EXCLUDED.emotion_score,
			emotion_reason = EXCLUDED.emotion_reason,
			saved_at = EXCLUDED.saved_at
		RETURNING saved_at
	`

	err := r.db.GetDB().QueryRow(query,
		draft.UserID,
		draft.GoodPoints,
		draft.Improvements,
		draft.Learnings,
		draft.ActionItem,
		nullableInt(draft.EmotionScore),
		draft.EmotionReason,
	).Scan(&draft.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	return nil
}

// Get retrieves the user's draft
func (r *DraftRepository) Get(userID int64) (*domain.Draft, error) {
	query := `
		SELECT user_id, good_points, improvements, learnings, action_item,
			emotion_score, emotion_reason, saved_at
		FROM drafts
		WHERE user_id = $1
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
	if _, err := r.db.GetDB().Exec(`DELETE FROM drafts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
