package domain

import "time"

// Retrospective is one member's reflection for a session
type Retrospective struct {
	ID     int64
	UserID int64
	// SessionLabel is the gating key: one retrospective per user per label.
	SessionLabel string
	// SessionIndex records the schedule position at submit time. Labels
	// repeat across program phases, so it is kept for reference only.
	SessionIndex int
	// ChatID and MessageID locate the posted copy of the retrospective
	ChatID    int64
	MessageID int

	GoodPoints    string
	Improvements  string
	Learnings     string
	ActionItem    string
	EmotionScore  *int
	EmotionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RetrospectiveRepository defines the interface for retrospective storage
type RetrospectiveRepository interface {
	Create(retro *Retrospective) error
	GetByID(id int64) (*Retrospective, error)
	GetByUser(userID int64) ([]*Retrospective, error)
	HasSubmitted(userID int64, sessionLabel string) (bool, error)
	SubmittedLabels(userID int64) (map[string]bool, error)
	Update(retro *Retrospective) error
	Delete(id int64) (bool, error)
	GetLatest(limit int) ([]*Retrospective, error)
}
