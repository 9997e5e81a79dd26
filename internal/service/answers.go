package service

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/glebk/retro-bot/internal/domain"
)

const (
	// MaxAnswerLength bounds every free-text answer, in characters
	MaxAnswerLength = 500
	MinEmotionScore = 1
	MaxEmotionScore = 10
)

// Answers are the form values of one retrospective
type Answers struct {
	GoodPoints    string
	Improvements  string
	Learnings     string
	ActionItem    string
	EmotionScore  *int
	EmotionReason string
}

// AnswersFromDraft restores saved answers
func AnswersFromDraft(d *domain.Draft) Answers {
	return Answers{
		GoodPoints:    d.GoodPoints,
		Improvements:  d.Improvements,
		Learnings:     d.Learnings,
		ActionItem:    d.ActionItem,
		EmotionScore:  d.EmotionScore,
		EmotionReason: d.EmotionReason,
	}
}

// Draft converts the answers into a draft for userID
func (a Answers) Draft(userID int64) *domain.Draft {
	return &domain.Draft{
		UserID:        userID,
		GoodPoints:    a.GoodPoints,
		Improvements:  a.Improvements,
		Learnings:     a.Learnings,
		ActionItem:    a.ActionItem,
		EmotionScore:  a.EmotionScore,
		EmotionReason: a.EmotionReason,
	}
}

// Validate checks required answers and bounds
func (a Answers) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"good points", a.GoodPoints},
		{"improvements", a.Improvements},
		{"learnings", a.Learnings},
		{"action item", a.ActionItem},
	}
	for _, r := range required {
		if err := ValidateText(r.name, r.value); err != nil {
			return err
		}
	}

	if a.EmotionScore != nil {
		if err := validateScore(*a.EmotionScore); err != nil {
			return err
		}
	}
	if utf8.RuneCountInString(a.EmotionReason) > MaxAnswerLength {
		return fmt.Errorf("%w: emotion reason is longer than %d characters", ErrInvalidInput, MaxAnswerLength)
	}

	return nil
}

// ValidateText checks a required free-text answer
func ValidateText(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, name)
	}
	if utf8.RuneCountInString(value) > MaxAnswerLength {
		return fmt.Errorf("%w: %s is longer than %d characters", ErrInvalidInput, name, MaxAnswerLength)
	}
	return nil
}

// ParseEmotionScore parses a whole number between 1 and 10
func ParseEmotionScore(raw string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: emotion score must be a whole number", ErrInvalidInput)
	}
	if err := validateScore(score); err != nil {
		return 0, err
	}
	return score, nil
}

func validateScore(score int) error {
	if score < MinEmotionScore || score > MaxEmotionScore {
		return fmt.Errorf("%w: emotion score must be between %d and %d", ErrInvalidInput, MinEmotionScore, MaxEmotionScore)
	}
	return nil
}

// Field names one editable answer of a retrospective
type Field string

const (
	FieldGoodPoints    Field = "good"
	FieldImprovements  Field = "improve"
	FieldLearnings     Field = "learn"
	FieldActionItem    Field = "action"
	FieldEmotionScore  Field = "score"
	FieldEmotionReason Field = "reason"
)

// Fields lists the editable fields in form order
var Fields = []Field{
	FieldGoodPoints,
	FieldImprovements,
	FieldLearnings,
	FieldActionItem,
	FieldEmotionScore,
	FieldEmotionReason,
}

// ClearValue empties an optional field when passed to Apply
const ClearValue = "-"

// ParseField maps a command argument to a Field
func ParseField(raw string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidInput, raw)
}

// Apply validates value and writes it into retro
func (f Field) Apply(retro *domain.Retrospective, value string) error {
	value = strings.TrimSpace(value)

	switch f {
	case FieldGoodPoints:
		return setText(&retro.GoodPoints, "good points", value)
	case FieldImprovements:
		return setText(&retro.Improvements, "improvements", value)
	case FieldLearnings:
		return setText(&retro.Learnings, "learnings", value)
	case FieldActionItem:
		return setText(&retro.ActionItem, "action item", value)
	case FieldEmotionScore:
		if value == ClearValue {
			retro.EmotionScore = nil
			return nil
		}
		score, err := ParseEmotionScore(value)
		if err != nil {
			return err
		}
		retro.EmotionScore = &score
		return nil
	case FieldEmotionReason:
		if value == ClearValue {
			retro.EmotionReason = ""
			return nil
		}
		return setText(&retro.EmotionReason, "emotion reason", value)
	}
	return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, string(f))
}

func setText(dst *string, name, value string) error {
	if err := ValidateText(name, value); err != nil {
		return err
	}
	*dst = value
	return nil
}
