package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/glebk/retro-bot/internal/schedule"
)

const displayLayout = "2006-01-02 15:04 MST"

type StatusCmd struct {
	At string `help:"Instant to resolve, RFC3339. Defaults to now." placeholder:"TIME"`
}

func (c *StatusCmd) Run(app *appContext) error {
	now := time.Now()
	if c.At != "" {
		t, err := time.Parse(time.RFC3339, c.At)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		now = t
	}

	status, err := app.sched.Resolve(now)
	if err != nil {
		return err
	}

	loc := app.sched.Location()
	fmt.Fprintf(app.out, "Session:   %s (%d of %d)\n", status.Label, status.Index+1, app.sched.Len())
	if !status.Open {
		fmt.Fprintf(app.out, "Status:    closed, the final deadline passed at %s\n", status.Deadline.In(loc).Format(displayLayout))
		return nil
	}
	fmt.Fprintf(app.out, "Deadline:  %s\n", status.Deadline.In(loc).Format(displayLayout))
	fmt.Fprintf(app.out, "Remaining: %s\n", schedule.FormatRemaining(status.Remaining))
	fmt.Fprintf(app.out, "Passes:    %d allowed\n", app.sched.MaxPassCount())
	return nil
}

type ScheduleCmd struct{}

func (c *ScheduleCmd) Run(app *appContext) error {
	current := -1
	if status, err := app.sched.Resolve(time.Now()); err == nil && status.Open {
		current = status.Index
	}

	loc := app.sched.Location()
	w := tabwriter.NewWriter(app.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSESSION\tDEADLINE\t")
	for i, e := range app.sched.Entries() {
		marker := ""
		if i == current {
			marker = "<- open"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i, e.Label, e.Deadline.In(loc).Format(displayLayout), marker)
	}
	return w.Flush()
}
