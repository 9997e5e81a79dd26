// Package schedule resolves which retrospective session is open at a given
// instant from a fixed, ordered list of deadlines.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmpty is returned when a schedule has no sessions
	ErrEmpty = errors.New("schedule has no sessions")
	// ErrUnsorted is returned when deadlines are not in ascending order
	ErrUnsorted = errors.New("schedule deadlines are not sorted")
	// ErrInvariantViolation means no session window contains the instant.
	// It signals a corrupted schedule, never an ordinary empty state.
	ErrInvariantViolation = errors.New("schedule invariant violated")
)

// Entry is one session: its label and the instant its submission window closes
type Entry struct {
	Deadline time.Time
	Label    string
}

// Status is the resolved session for an instant
type Status struct {
	Index     int
	Label     string
	Deadline  time.Time
	Remaining time.Duration
	Open      bool
}

// Schedule is an immutable ordered list of sessions
type Schedule struct {
	entries      []Entry
	loc          *time.Location
	maxPassCount int
}

// New validates entries and builds a Schedule. The slice is copied.
func New(entries []Entry, loc *time.Location, maxPassCount int) (*Schedule, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	if loc == nil {
		loc = time.UTC
	}
	if maxPassCount < 0 {
		return nil, fmt.Errorf("max pass count must not be negative, got %d", maxPassCount)
	}

	for i, e := range entries {
		if e.Label == "" {
			return nil, fmt.Errorf("session %d has an empty label", i)
		}
		if e.Deadline.IsZero() {
			return nil, fmt.Errorf("session %d (%s) has no deadline", i, e.Label)
		}
		if i > 0 && e.Deadline.Before(entries[i-1].Deadline) {
			return nil, fmt.Errorf("%w: session %d (%s) at %s is before session %d (%s) at %s",
				ErrUnsorted,
				i, e.Label, e.Deadline.Format(time.RFC3339),
				i-1, entries[i-1].Label, entries[i-1].Deadline.Format(time.RFC3339))
		}
	}

	copied := make([]Entry, len(entries))
	copy(copied, entries)

	return &Schedule{
		entries:      copied,
		loc:          loc,
		maxPassCount: maxPassCount,
	}, nil
}

// Resolve returns the session whose submission window contains now.
//
// Before the first deadline session 0 is open. Between deadlines i and i+1
// session i+1 is open; a deadline instant belongs to the window starting at
// it. From the final deadline on, the last session is reported closed.
func (s *Schedule) Resolve(now time.Time) (Status, error) {
	n := len(s.entries)
	if n == 0 {
		return Status{}, fmt.Errorf("%w: empty schedule", ErrInvariantViolation)
	}

	last := s.entries[n-1]
	if !now.Before(last.Deadline) {
		return Status{
			Index:    n - 1,
			Label:    last.Label,
			Deadline: last.Deadline,
		}, nil
	}

	first := s.entries[0]
	if now.Before(first.Deadline) {
		return Status{
			Index:     0,
			Label:     first.Label,
			Deadline:  first.Deadline,
			Remaining: first.Deadline.Sub(now),
			Open:      true,
		}, nil
	}

	for i := 0; i < n-1; i++ {
		if !now.Before(s.entries[i].Deadline) && now.Before(s.entries[i+1].Deadline) {
			next := s.entries[i+1]
			return Status{
				Index:     i + 1,
				Label:     next.Label,
				Deadline:  next.Deadline,
				Remaining: next.Deadline.Sub(now),
				Open:      true,
			}, nil
		}
	}

	return Status{}, fmt.Errorf("%w: no session window contains %s",
		ErrInvariantViolation, now.In(s.Location()).Format(time.RFC3339))
}

// Len returns the number of sessions
func (s *Schedule) Len() int {
	return len(s.entries)
}

// Entry returns the session at index i
func (s *Schedule) Entry(i int) Entry {
	return s.entries[i]
}

// Entries returns a copy of all sessions in order
func (s *Schedule) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Location is the zone deadlines and clocks are displayed in
func (s *Schedule) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// MaxPassCount is how many sessions a member may skip. The schedule only
// carries the bound; callers enforce it.
func (s *Schedule) MaxPassCount() int {
	return s.maxPassCount
}
