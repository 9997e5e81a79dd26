package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/glebk/retro-bot/internal/config"
	"github.com/glebk/retro-bot/internal/schedule"
)

func newTestApp(t *testing.T) (*appContext, *bytes.Buffer) {
	t.Helper()

	sched, err := schedule.Default()
	if err != nil {
		t.Fatalf("schedule.Default() returned error: %v", err)
	}

	var out bytes.Buffer
	return &appContext{cfg: &config.Config{}, sched: sched, out: &out}, &out
}

func TestStatusCmd(t *testing.T) {
	tests := []struct {
		at   string
		want []string
	}{
		{
			at:   "2025-05-05T00:00:00Z",
			want: []string{"Session:   0 (2 of 34)", "Deadline:  2025-05-13 05:00 KST", "Remaining: 7days 20hours 0minutes"},
		},
		{
			at:   "2025-04-30T19:59:00Z",
			want: []string{"Session:   prep (1 of 34)", "Remaining: 1minutes"},
		},
		{
			at:   "2025-12-23T05:00:00+09:00",
			want: []string{"Session:   extra4 (34 of 34)", "closed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			app, out := newTestApp(t)

			if err := (&StatusCmd{At: tt.at}).Run(app); err != nil {
				t.Fatalf("Run() returned error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestStatusCmdInvalidTime(t *testing.T) {
	app, _ := newTestApp(t)

	if err := (&StatusCmd{At: "next tuesday"}).Run(app); err == nil {
		t.Error("Run() returned nil error for an invalid --at")
	}
}

func TestScheduleCmd(t *testing.T) {
	app, out := newTestApp(t)

	if err := (&ScheduleCmd{}).Run(app); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 35 {
		t.Fatalf("got %d lines, want header plus 34 sessions", len(lines))
	}
	if !strings.Contains(lines[1], "prep") || !strings.Contains(lines[1], "2025-05-01 05:00 KST") {
		t.Errorf("first session line = %q", lines[1])
	}
}
