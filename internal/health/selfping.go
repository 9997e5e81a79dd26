package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/glebk/retro-bot/internal/logger"
)

// DefaultPingInterval is how often SelfPing requests the URL
const DefaultPingInterval = 5 * time.Minute

// SelfPing requests url right away and then every interval until ctx is
// cancelled
func SelfPing(ctx context.Context, client *http.Client, url string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := ping(ctx, client, url); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("self-ping failed", "url", url, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func ping(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	logger.Debug("self-ping ok", "url", url, "status", resp.StatusCode)
	return nil
}
