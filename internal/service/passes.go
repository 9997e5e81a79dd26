package service

import (
	"fmt"
)

// PassUsage summarizes how many closed sessions a member skipped
type PassUsage struct {
	// Missed holds the labels of closed sessions without a retrospective
	Missed    []string
	Max       int
	Remaining int
}

// Exceeded reports whether the member skipped more sessions than allowed
func (p PassUsage) Exceeded() bool {
	return len(p.Missed) > p.Max
}

// PassUsage counts the closed sessions the user has no retrospective for.
// A session is closed once its deadline has passed. Submissions are matched
// by label, so a label repeated in a later phase counts as submitted once
// any session with that label was.
func (s *RetroService) PassUsage(userID int64) (PassUsage, error) {
	status, err := s.CurrentSession()
	if err != nil {
		return PassUsage{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	closed := status.Index
	if !status.Open {
		closed = s.schedule.Len()
	}

	submitted, err := s.retros.SubmittedLabels(userID)
	if err != nil {
		return PassUsage{}, err
	}

	usage := PassUsage{Max: s.schedule.MaxPassCount()}
	for i := 0; i < closed; i++ {
		label := s.schedule.Entry(i).Label
		if !submitted[label] {
			usage.Missed = append(usage.Missed, label)
		}
	}

	usage.Remaining = usage.Max - len(usage.Missed)
	if usage.Remaining < 0 {
		usage.Remaining = 0
	}

	return usage, nil
}
