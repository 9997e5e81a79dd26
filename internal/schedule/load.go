package schedule

import (
	_ "embed"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultTimezone is the zone the cohort runs in (UTC+9)
	DefaultTimezone = "Asia/Seoul"
	// DefaultMaxPassCount applies when the file does not set max_pass_count
	DefaultMaxPassCount = 2
)

//go:embed default.toml
var defaultSchedule []byte

type scheduleFile struct {
	Timezone     string         `toml:"timezone"`
	MaxPassCount *int           `toml:"max_pass_count"`
	Sessions     []sessionEntry `toml:"session"`
}

type sessionEntry struct {
	Label    string    `toml:"label"`
	Deadline time.Time `toml:"deadline"`
}

// Default returns the schedule compiled into the binary
func Default() (*Schedule, error) {
	s, err := Parse(defaultSchedule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded schedule: %w", err)
	}
	return s, nil
}

// Load reads a schedule TOML file. An empty path selects the embedded default.
func Load(path string) (*Schedule, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a schedule document
func Parse(data []byte) (*Schedule, error) {
	var f scheduleFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("failed to decode schedule: %w", err)
	}

	tz := f.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}

	maxPass := DefaultMaxPassCount
	if f.MaxPassCount != nil {
		maxPass = *f.MaxPassCount
	}

	entries := make([]Entry, 0, len(f.Sessions))
	for _, s := range f.Sessions {
		entries = append(entries, Entry{
			Deadline: inZone(s.Deadline, loc),
			Label:    s.Label,
		})
	}

	return New(entries, loc, maxPass)
}

// inZone pins TOML local date-times, which carry no offset, to the schedule zone
func inZone(t time.Time, loc *time.Location) time.Time {
	switch t.Location().String() {
	case "datetime-local", "date-local":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	return t
}
