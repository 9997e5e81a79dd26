package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/glebk/retro-bot/internal/config"
	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/schedule"
)

var CLI struct {
	Serve    ServeCmd    `cmd:"" help:"Run the bot and the health server." default:"1"`
	Status   StatusCmd   `cmd:"" help:"Show the session open at an instant."`
	Schedule ScheduleCmd `cmd:"" help:"List every session and its deadline."`
}

// appContext is bound to every command's Run method
type appContext struct {
	cfg   *config.Config
	sched *schedule.Schedule
	out   io.Writer
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("retro-bot"),
		kong.Description("Collects weekly retrospectives in Telegram"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, Dir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	sched, err := schedule.Load(cfg.SchedulePath)
	if err != nil {
		logger.Fatal("failed to load schedule", "path", cfg.SchedulePath, "error", err)
	}

	app := &appContext{cfg: cfg, sched: sched, out: os.Stdout}
	if err := ctx.Run(app); err != nil {
		logger.Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
