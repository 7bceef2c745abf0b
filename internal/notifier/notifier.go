// Package notifier tells a running widget host to reload its timelines.
// The host advertises itself through a lockfile holding "port|pid|secret".
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/logger"
)

var findProcessFunc = ps.FindProcess

var (
	// ErrHostNotRunning is returned when no live widget host owns the lockfile.
	ErrHostNotRunning = errors.New("widget host is not running")
	// ErrMalformedLockfile is returned when the lockfile cannot be parsed.
	ErrMalformedLockfile = errors.New("lockfile is malformed")
)

// Lockfile is the advertisement written by the widget host.
type Lockfile struct {
	Port   int
	PID    int
	Secret string
}

func (l Lockfile) String() string {
	return fmt.Sprintf("%d|%d|%s", l.Port, l.PID, l.Secret)
}

// WriteLockfile publishes l at path, readable only by the owner.
func WriteLockfile(path string, l Lockfile) error {
	return os.WriteFile(path, []byte(l.String()), 0600)
}

// ParseLockfile parses "port|pid|secret".
func ParseLockfile(content string) (Lockfile, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return Lockfile{}, ErrMalformedLockfile
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Lockfile{}, fmt.Errorf("%w: invalid port number", ErrMalformedLockfile)
	}
	if port < 1 || port > 65535 {
		return Lockfile{}, fmt.Errorf("%w: port number %d is outside valid range (1-65535)", ErrMalformedLockfile, port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || pid < 1 {
		return Lockfile{}, fmt.Errorf("%w: invalid process ID", ErrMalformedLockfile)
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return Lockfile{}, fmt.Errorf("%w: secret is empty", ErrMalformedLockfile)
	}
	return Lockfile{Port: port, PID: pid, Secret: secret}, nil
}

// Notifier sends reload signals to the widget host.
type Notifier struct {
	lockfilePath string
	client       *http.Client
	retries      int
	retryDelay   time.Duration
}

func New(lockfilePath string) *Notifier {
	return &Notifier{
		lockfilePath: lockfilePath,
		client:       &http.Client{Timeout: constants.ReloadTimeout},
		retries:      constants.ReloadMaxRetries,
		retryDelay:   constants.ReloadRetryDelay,
	}
}

// host reads the lockfile and checks that its PID is a live widget host.
func (n *Notifier) host() (Lockfile, error) {
	content, err := os.ReadFile(n.lockfilePath)
	if err != nil {
		return Lockfile{}, ErrHostNotRunning
	}
	lock, err := ParseLockfile(string(content))
	if err != nil {
		return Lockfile{}, err
	}

	process, err := findProcessFunc(lock.PID)
	if err != nil || process == nil {
		return Lockfile{}, fmt.Errorf("%w: no process with PID %d", ErrHostNotRunning, lock.PID)
	}
	if !strings.HasPrefix(process.Executable(), constants.WidgetAppName) {
		return Lockfile{}, fmt.Errorf("%w: process with PID %d is %s", ErrHostNotRunning, lock.PID, process.Executable())
	}
	return lock, nil
}

// Probe reports the running widget host, or ErrHostNotRunning.
func (n *Notifier) Probe() (Lockfile, error) {
	return n.host()
}

// ReloadAllTimelines asks the widget host to re-read the snapshot.
// Connection failures are retried a few times before giving up.
func (n *Notifier) ReloadAllTimelines(ctx context.Context) error {
	lock, err := n.host()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d%s", lock.Port, constants.ReloadPath)
	var lastErr error
	for attempt := 0; attempt < n.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.retryDelay):
			}
		}
		lastErr = n.send(ctx, url, lock.Secret)
		if lastErr == nil {
			return nil
		}
		var status *statusError
		if errors.As(lastErr, &status) {
			return lastErr
		}
		logger.Debug("Reload signal failed, retrying", "attempt", attempt+1, "error", lastErr)
	}
	return lastErr
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("reload failed with status %d: %s", e.code, e.body)
}

func (n *Notifier) send(ctx context.Context, url, secret string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set(constants.SecretHeader, secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNoContent {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &statusError{code: res.StatusCode, body: strings.TrimSpace(string(body))}
}
