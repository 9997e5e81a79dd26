package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glebk/retro-bot/internal/bot"
	"github.com/glebk/retro-bot/internal/config"
	"github.com/glebk/retro-bot/internal/domain"
	"github.com/glebk/retro-bot/internal/health"
	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/repository/postgres"
	"github.com/glebk/retro-bot/internal/repository/sqlite"
	"github.com/glebk/retro-bot/internal/service"
)

type ServeCmd struct{}

// store holds the repositories of the selected backend
type store struct {
	retros  domain.RetrospectiveRepository
	drafts  domain.DraftRepository
	members domain.MemberRepository
	close   func() error
}

// openStore uses postgres when DATABASE_URL is set, sqlite otherwise
func openStore(cfg *config.Config) (*store, error) {
	if cfg.DatabaseURL != "" {
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("database initialized", "backend", "postgres")
		return &store{
			retros:  postgres.NewRetrospectiveRepository(db),
			drafts:  postgres.NewDraftRepository(db),
			members: postgres.NewMemberRepository(db),
			close:   db.Close,
		}, nil
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized", "backend", "sqlite", "path", cfg.DatabasePath)
	return &store{
		retros:  sqlite.NewRetrospectiveRepository(db),
		drafts:  sqlite.NewDraftRepository(db),
		members: sqlite.NewMemberRepository(db),
		close:   db.Close,
	}, nil
}

func (c *ServeCmd) Run(app *appContext) error {
	cfg := app.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer st.close()

	svc := service.NewRetroService(app.sched, st.retros, st.drafts, st.members, cfg.AdminIDs)

	telegramBot, err := bot.New(cfg.TelegramToken, svc, cfg)
	if err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := health.NewServer(cfg.HTTPAddr, svc).Run(ctx); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
			stop()
		}
	}()

	if cfg.SelfPingURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}
			health.SelfPing(ctx, client, cfg.SelfPingURL, health.DefaultPingInterval)
		}()
	}

	if status, err := svc.CurrentSession(); err == nil {
		logger.Info("bot started", "session", status.Label, "open", status.Open, "sessions", app.sched.Len())
	}

	botErr := telegramBot.Start(ctx)
	stop()
	wg.Wait()
	close(errCh)

	logger.Info("shut down gracefully")

	if botErr != nil {
		return botErr
	}
	return <-errCh
}
