package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebk/retro-bot/internal/domain"
	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/schedule"
)

var (
	// ErrProgramClosed is returned once the final deadline has passed
	ErrProgramClosed = errors.New("the program has concluded")
	// ErrAlreadySubmitted is returned when the user already has a
	// retrospective for the resolved session label
	ErrAlreadySubmitted = errors.New("retrospective already submitted for this session")
	// ErrNotFound is returned for unknown retrospective IDs
	ErrNotFound = errors.New("retrospective not found")
	// ErrForbidden is returned when the caller may not act on the record
	ErrForbidden = errors.New("permission denied")
	// ErrInvalidInput wraps answer validation failures
	ErrInvalidInput = errors.New("invalid input")
)

// LatestLimit is how many retrospectives the admin listing shows
const LatestLimit = 20

// Publisher posts a retrospective to the chat and can take it down again
type Publisher interface {
	Publish(retro *domain.Retrospective) (messageID int, err error)
	Retract(chatID int64, messageID int) error
}

// RetroService handles business logic for retrospectives
type RetroService struct {
	schedule *schedule.Schedule
	retros   domain.RetrospectiveRepository
	drafts   domain.DraftRepository
	members  domain.MemberRepository
	admins   map[int64]bool
	now      func() time.Time
}

// Option configures a RetroService
type Option func(*RetroService)

// WithClock replaces time.Now as the service clock
func WithClock(now func() time.Time) Option {
	return func(s *RetroService) {
		s.now = now
	}
}

// NewRetroService creates a new RetroService
func NewRetroService(
	sched *schedule.Schedule,
	retros domain.RetrospectiveRepository,
	drafts domain.DraftRepository,
	members domain.MemberRepository,
	adminIDs []int64,
	opts ...Option,
) *RetroService {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	s := &RetroService{
		schedule: sched,
		retros:   retros,
		drafts:   drafts,
		members:  members,
		admins:   admins,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Schedule returns the session schedule the service resolves against
func (s *RetroService) Schedule() *schedule.Schedule {
	return s.schedule
}

// Now returns the current instant in the schedule's zone
func (s *RetroService) Now() time.Time {
	return s.now().In(s.schedule.Location())
}

// CurrentSession resolves the session open right now
func (s *RetroService) CurrentSession() (schedule.Status, error) {
	return s.schedule.Resolve(s.Now())
}

// MaxPassCount exposes the configured number of sessions a member may skip
func (s *RetroService) MaxPassCount() int {
	return s.schedule.MaxPassCount()
}

// IsAdmin reports whether the user may use admin commands
func (s *RetroService) IsAdmin(userID int64) bool {
	return s.admins[userID]
}

// CheckEligibility resolves the current session and verifies the user may
// still submit for it
func (s *RetroService) CheckEligibility(userID int64) (schedule.Status, error) {
	status, err := s.CurrentSession()
	if err != nil {
		return status, fmt.Errorf("failed to resolve session: %w", err)
	}

	if !status.Open {
		return status, ErrProgramClosed
	}

	// Labels repeat across program phases; the check is per label.
	submitted, err := s.retros.HasSubmitted(userID, status.Label)
	if err != nil {
		return status, fmt.Errorf("failed to check submission: %w", err)
	}
	if submitted {
		return status, ErrAlreadySubmitted
	}

	return status, nil
}

// Submit validates the answers, re-checks eligibility against the session
// open now, publishes the retrospective and stores it. When publishing or
// storing fails the answers are kept as the user's draft.
func (s *RetroService) Submit(userID, chatID int64, answers Answers, pub Publisher) (*domain.Retrospective, error) {
	if err := answers.Validate(); err != nil {
		return nil, err
	}

	status, err := s.CheckEligibility(userID)
	if err != nil {
		return nil, err
	}

	retro := &domain.Retrospective{
		UserID:        userID,
		SessionLabel:  status.Label,
		SessionIndex:  status.Index,
		ChatID:        chatID,
		GoodPoints:    answers.GoodPoints,
		Improvements:  answers.Improvements,
		Learnings:     answers.Learnings,
		ActionItem:    answers.ActionItem,
		EmotionScore:  answers.EmotionScore,
		EmotionReason: answers.EmotionReason,
	}

	messageID, err := pub.Publish(retro)
	if err != nil {
		s.keepDraft(userID, answers)
		return nil, fmt.Errorf("failed to publish retrospective: %w", err)
	}
	retro.MessageID = messageID

	if err := s.retros.Create(retro); err != nil {
		if rerr := pub.Retract(chatID, messageID); rerr != nil {
			logger.Error("failed to retract unsaved retrospective", "user", userID, "chat", chatID, "message", messageID, "error", rerr)
		}
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		s.keepDraft(userID, answers)
		return nil, fmt.Errorf("failed to store retrospective: %w", err)
	}

	if err := s.drafts.Delete(userID); err != nil {
		logger.Warn("failed to clear draft", "user", userID, "error", err)
	}

	logger.Info("retrospective submitted", "user", userID, "session", retro.SessionLabel, "index", retro.SessionIndex, "id", retro.ID)

	return retro, nil
}

func (s *RetroService) keepDraft(userID int64, answers Answers) {
	if err := s.SaveDraft(userID, answers); err != nil {
		logger.Error("draft lost", "user", userID, "error", err)
		return
	}
	logger.Info("draft saved", "user", userID)
}

// Draft returns the user's saved answers, or nil
func (s *RetroService) Draft(userID int64) (*domain.Draft, error) {
	draft, err := s.drafts.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return draft, nil
}

// SaveDraft stores the answers as the user's draft, replacing any previous one
func (s *RetroService) SaveDraft(userID int64, answers Answers) error {
	if err := s.drafts.Save(answers.Draft(userID)); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// ClearDraft drops the user's saved answers
func (s *RetroService) ClearDraft(userID int64) error {
	return s.drafts.Delete(userID)
}

// Retrospective returns a retrospective by ID
func (s *RetroService) Retrospective(id int64) (*domain.Retrospective, error) {
	retro, err := s.retros.GetByID(id)
	if err != nil {
		return nil, err
	}
	if retro == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return retro, nil
}

// ViewRetrospective returns a retrospective owned by userID
func (s *RetroService) ViewRetrospective(userID, id int64) (*domain.Retrospective, error) {
	retro, err := s.Retrospective(id)
	if err != nil {
		return nil, err
	}
	if retro.UserID != userID {
		return nil, ErrForbidden
	}
	return retro, nil
}

// UserRetrospectives lists the user's retrospectives, newest first
func (s *RetroService) UserRetrospectives(userID int64) ([]*domain.Retrospective, error) {
	return s.retros.GetByUser(userID)
}

// LatestRetrospectives lists the newest retrospectives for an admin
func (s *RetroService) LatestRetrospectives(adminID int64, limit int) ([]*domain.Retrospective, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrForbidden
	}
	return s.retros.GetLatest(limit)
}

// EditRetrospective changes one answer of a retrospective
func (s *RetroService) EditRetrospective(adminID, id int64, field Field, value string) (*domain.Retrospective, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrForbidden
	}

	retro, err := s.Retrospective(id)
	if err != nil {
		return nil, err
	}

	if err := field.Apply(retro, value); err != nil {
		return nil, err
	}

	if err := s.retros.Update(retro); err != nil {
		return nil, err
	}

	logger.Info("retrospective edited", "admin", adminID, "id", id, "field", string(field))

	return retro, nil
}

// DeleteRetrospective removes a retrospective and returns what was removed
func (s *RetroService) DeleteRetrospective(adminID, id int64) (*domain.Retrospective, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrForbidden
	}

	retro, err := s.Retrospective(id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.retros.Delete(id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	logger.Info("retrospective deleted", "admin", adminID, "id", id, "user", retro.UserID, "session", retro.SessionLabel)

	return retro, nil
}

// RegisterMember registers a new member or refreshes their names
func (s *RetroService) RegisterMember(id int64, username, firstName, lastName string) error {
	member := &domain.Member{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.members.Upsert(member); err != nil {
		return fmt.Errorf("failed to register member: %w", err)
	}
	return nil
}

// Member returns a registered member, or nil
func (s *RetroService) Member(id int64) (*domain.Member, error) {
	return s.members.GetByID(id)
}

// MemberNames returns display names for the given user IDs. Unknown users
// are rendered by ID.
func (s *RetroService) MemberNames(ids []int64) (map[int64]string, error) {
	members, err := s.members.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if m, ok := members[id]; ok {
			names[id] = m.DisplayName()
		} else {
			names[id] = fmt.Sprintf("user %d", id)
		}
	}
	return names, nil
}
