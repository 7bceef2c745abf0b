package widget

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/flock"

	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/notifier"
)

// ErrAlreadyRunning is returned when another widget host holds the lock.
var ErrAlreadyRunning = errors.New("another instance of peakstreak-widget is already running")

const instanceLockName = ".widget.lock"

// Host keeps the current entry fresh: it refreshes on the timeline
// schedule and whenever the primary process posts to the reload endpoint.
type Host struct {
	provider *Provider
	dir      string
	onRender func(Entry)
	log      *log.Logger

	secret  string
	reloads chan struct{}

	mu       sync.RWMutex
	current  Entry
	next     time.Time
	rendered time.Time
}

// NewHost creates a host that advertises itself in dir. onRender receives
// every refreshed entry and may be nil.
func NewHost(provider *Provider, dir string, onRender func(Entry)) *Host {
	return &Host{
		provider: provider,
		dir:      dir,
		onRender: onRender,
		log:      logger.Component("widget-host"),
		reloads:  make(chan struct{}, 1),
	}
}

// Current returns the most recently rendered entry.
func (h *Host) Current() Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Refresh rebuilds the entry from the snapshot and hands it to onRender.
func (h *Host) Refresh() Entry {
	now := h.provider.Now()
	tl := h.provider.Timeline(now)
	entry := tl.Entries[0]

	h.mu.Lock()
	h.current = entry
	h.next = tl.NextRefresh
	h.rendered = now
	h.mu.Unlock()

	if h.onRender != nil {
		h.onRender(entry)
	}
	return entry
}

// Router serves the reload and health endpoints.
func (h *Host) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(constants.ReloadPath, h.handleReload)
	r.Get(constants.HealthPath, h.handleHealth)
	return r
}

func (h *Host) handleReload(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get(constants.SecretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	select {
	case h.reloads <- struct{}{}:
	default:
	}
	w.WriteHeader(http.StatusNoContent)
}

type health struct {
	Status      string    `json:"status"`
	Habit       string    `json:"habit,omitempty"`
	Empty       bool      `json:"empty"`
	RenderedAt  time.Time `json:"rendered_at"`
	NextRefresh time.Time `json:"next_refresh"`
}

func (h *Host) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	body := health{
		Status:      "ok",
		Habit:       h.current.View.Name,
		Empty:       h.current.View.Empty,
		RenderedAt:  h.rendered,
		NextRefresh: h.next,
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("Failed to write health response", "error", err)
	}
}

func newSecret() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// LockfilePath is where the host advertises its port, pid and secret.
func (h *Host) LockfilePath() string {
	return filepath.Join(h.dir, constants.WidgetLockfileName)
}

// Serve runs until ctx is cancelled. Only one host may run per directory.
func (h *Host) Serve(ctx context.Context) error {
	if err := os.MkdirAll(h.dir, 0700); err != nil {
		return fmt.Errorf("failed to create widget directory: %w", err)
	}

	instance := flock.New(filepath.Join(h.dir, instanceLockName))
	locked, err := instance.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer instance.Unlock()

	secret, err := newSecret()
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	h.secret = secret

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	lock := notifier.Lockfile{Port: port, PID: os.Getpid(), Secret: secret}
	if err := notifier.WriteLockfile(h.LockfilePath(), lock); err != nil {
		ln.Close()
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	defer os.Remove(h.LockfilePath())

	srv := &http.Server{Handler: h.Router(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	h.log.Info("Widget host listening", "port", port)

	h.Refresh()
	for {
		h.mu.RLock()
		wait := h.next.Sub(h.rendered)
		h.mu.RUnlock()
		if wait <= 0 {
			wait = constants.DefaultRefreshInterval
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errc:
			timer.Stop()
			return fmt.Errorf("widget host server failed: %w", err)
		case <-h.reloads:
			timer.Stop()
			h.log.Debug("Reload requested")
			h.Refresh()
		case <-timer.C:
			h.Refresh()
		}
	}
}
