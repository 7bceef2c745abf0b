package widget

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/notifier"
)

func TestReloadEndpoint(t *testing.T) {
	h := NewHost(newTestProvider(fakeSuite{}, widgetConfig()), t.TempDir(), nil)
	h.secret = "test-secret"
	router := h.Router()

	tests := []struct {
		name   string
		secret string
		status int
	}{
		{"missing secret", "", http.StatusUnauthorized},
		{"wrong secret", "nope", http.StatusUnauthorized},
		{"valid secret", "test-secret", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, constants.ReloadPath, nil)
			if tt.secret != "" {
				req.Header.Set(constants.SecretHeader, tt.secret)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}

	select {
	case <-h.reloads:
	default:
		t.Error("valid reload should queue a refresh")
	}

	// Repeated reloads coalesce instead of blocking.
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, constants.ReloadPath, nil)
		req.Header.Set(constants.SecretHeader, "test-secret")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	if len(h.reloads) != 1 {
		t.Errorf("expected one queued reload, got %d", len(h.reloads))
	}
}

func TestHealthEndpoint(t *testing.T) {
	rows := []models.WidgetHabit{{ID: "a", Name: "Read"}}
	h := NewHost(newTestProvider(suiteWith(t, rows, noon), widgetConfig()), t.TempDir(), nil)
	h.Refresh()

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, constants.HealthPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body health
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Status != "ok" || body.Habit != "Read" || body.Empty {
		t.Errorf("unexpected health %+v", body)
	}
	if !body.NextRefresh.Equal(noon.Add(time.Hour)) {
		t.Errorf("NextRefresh = %v", body.NextRefresh)
	}
}

func waitForLockfile(t *testing.T, path string) notifier.Lockfile {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if content, err := os.ReadFile(path); err == nil {
			lock, err := notifier.ParseLockfile(string(content))
			if err == nil {
				return lock
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("lockfile %s never appeared", path)
	return notifier.Lockfile{}
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	renders := make(chan Entry, 8)
	h := NewHost(newTestProvider(fakeSuite{err: errors.New("missing")}, widgetConfig()), dir, func(e Entry) {
		renders <- e
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Serve(ctx) }()

	lock := waitForLockfile(t, filepath.Join(dir, constants.WidgetLockfileName))
	if lock.PID != os.Getpid() {
		t.Errorf("lockfile PID = %d, want %d", lock.PID, os.Getpid())
	}
	<-renders

	second := NewHost(newTestProvider(fakeSuite{}, widgetConfig()), dir, nil)
	if err := second.Serve(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second host: expected ErrAlreadyRunning, got %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d%s", lock.Port, constants.ReloadPath), nil)
	req.Header.Set(constants.SecretHeader, lock.Secret)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("reload request failed: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("reload status = %d", res.StatusCode)
	}

	select {
	case e := <-renders:
		if !e.View.Empty {
			t.Errorf("expected empty view, got %+v", e.View)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload did not trigger a refresh")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
	if _, err := os.Stat(filepath.Join(dir, constants.WidgetLockfileName)); !os.IsNotExist(err) {
		t.Error("lockfile should be removed on shutdown")
	}
}
