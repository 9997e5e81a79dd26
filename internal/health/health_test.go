package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebk/retro-bot/internal/schedule"
)

type fakeSource struct {
	status schedule.Status
	err    error
}

func (f fakeSource) CurrentSession() (schedule.Status, error) {
	return f.status, f.err
}

func (f fakeSource) MaxPassCount() int {
	return 2
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAliveEndpoints(t *testing.T) {
	r := NewRouter(fakeSource{})

	for _, path := range []string{"/", "/health"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Errorf("GET %s = %d %q, want 200 OK", path, w.Code, w.Body.String())
		}
	}
}

func TestSessionEndpoint(t *testing.T) {
	sched, err := schedule.Default()
	if err != nil {
		t.Fatalf("schedule.Default() returned error: %v", err)
	}
	status, err := sched.Resolve(time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}

	r := NewRouter(fakeSource{status: status})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("GET /session = %d, want 200", w.Code)
	}

	var got sessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// 2025-05-05 00:00 UTC is 09:00 KST, 7 days 20 hours before the 05-13 deadline.
	if got.Index != 1 || got.Label != "0" || !got.Open {
		t.Errorf("session = %+v, want index 1 label 0 open", got)
	}
	if got.Remaining != "7days 20hours 0minutes" {
		t.Errorf("Remaining = %q", got.Remaining)
	}
	if got.RemainingSeconds != int64((7*24+20)*time.Hour/time.Second) {
		t.Errorf("RemainingSeconds = %d", got.RemainingSeconds)
	}
	if got.MaxPassCount != 2 {
		t.Errorf("MaxPassCount = %d, want 2", got.MaxPassCount)
	}
}

func TestSessionEndpointError(t *testing.T) {
	r := NewRouter(fakeSource{err: schedule.ErrInvariantViolation})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("GET /session = %d, want 500", w.Code)
	}
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", fakeSource{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}

func TestSelfPing(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		SelfPing(ctx, ts.Client(), ts.URL+"/health", 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for hits.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("self-ping hit the server %d times, want at least 2", hits.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("SelfPing() did not stop after cancel")
	}
}

func TestSelfPingStartsImmediately(t *testing.T) {
	hit := make(chan struct{}, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case hit <- struct{}{}:
		default:
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go SelfPing(ctx, ts.Client(), ts.URL, time.Hour)

	select {
	case <-hit:
	case <-time.After(5 * time.Second):
		t.Fatal("self-ping waited for the first interval")
	}
}

func TestPingReportsServerErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	if err := ping(context.Background(), ts.Client(), ts.URL); err == nil {
		t.Error("ping() returned nil error for 503")
	}
}
