package domain

import "time"

// Draft holds form answers that could not be submitted
type Draft struct {
	UserID        int64
	GoodPoints    string
	Improvements  string
	Learnings     string
	ActionItem    string
	EmotionScore  *int
	EmotionReason string
	SavedAt       time.Time
}

// DraftRepository defines the interface for draft storage. A user has at
// most one draft; saving replaces it.
type DraftRepository interface {
	Save(draft *Draft) error
	Get(userID int64) (*Draft, error)
	Delete(userID int64) error
}
