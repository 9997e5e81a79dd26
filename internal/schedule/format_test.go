package schedule

import (
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"zero", 0, "0minutes"},
		{"negative", -5 * time.Minute, "0minutes"},
		{"under a minute", 59 * time.Second, "0minutes"},
		{"thirty minutes", 30 * time.Minute, "30minutes"},
		{"ninety minutes", 90 * time.Minute, "1hours 30minutes"},
		{"exact hour", time.Hour, "1hours 0minutes"},
		{"hours truncate seconds", 2*time.Hour + 5*time.Minute + 59*time.Second, "2hours 5minutes"},
		{"two days three hours", 2*24*time.Hour + 3*time.Hour, "2days 3hours 0minutes"},
		{"one day", 24 * time.Hour, "1days 0hours 0minutes"},
		{"full week", 7*24*time.Hour - time.Minute, "6days 23hours 59minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRemaining(tt.d); got != tt.expected {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}
