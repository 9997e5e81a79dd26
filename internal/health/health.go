// Package health serves liveness and session status over HTTP.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebk/retro-bot/internal/logger"
	"github.com/glebk/retro-bot/internal/schedule"
)

const shutdownTimeout = 5 * time.Second

// SessionSource resolves the currently open session
type SessionSource interface {
	CurrentSession() (schedule.Status, error)
	MaxPassCount() int
}

type sessionResponse struct {
	Index            int       `json:"index"`
	Label            string    `json:"label"`
	Deadline         time.Time `json:"deadline"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Remaining        string    `json:"remaining"`
	Open             bool      `json:"open"`
	MaxPassCount     int       `json:"max_pass_count"`
}

// NewRouter configures the gin engine
func NewRouter(src SessionSource) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/", alive)
	r.GET("/health", alive)
	r.GET("/session", sessionHandler(src))

	return r
}

func alive(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func sessionHandler(src SessionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := src.CurrentSession()
		if err != nil {
			logger.Error("failed to resolve session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, sessionResponse{
			Index:            status.Index,
			Label:            status.Label,
			Deadline:         status.Deadline,
			RemainingSeconds: int64(status.Remaining / time.Second),
			Remaining:        schedule.FormatRemaining(status.Remaining),
			Open:             status.Open,
			MaxPassCount:     src.MaxPassCount(),
		})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// Server runs the health router
type Server struct {
	srv *http.Server
}

// NewServer creates a server listening on addr
func NewServer(addr string, src SessionSource) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(src),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("health server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
