// Package shared is the app-group key-value area both binaries can reach.
// Each key is one file; readers always see either the previous or the new
// value in full.
package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/julianstephens/peakstreak/internal/constants"
)

var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("key not found in shared suite")
	// ErrInvalidKey is returned for keys that are not plain file names.
	ErrInvalidKey = errors.New("invalid suite key")
)

const lockRetryDelay = 20 * time.Millisecond

// Suite is a directory-backed store of whole values.
type Suite struct {
	dir  string
	lock *flock.Flock
}

// Open creates the suite directory if needed.
func Open(dir string) (*Suite, error) {
	if dir == "" {
		return nil, errors.New("suite directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create suite directory: %w", err)
	}
	return &Suite{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, constants.SuiteLockName)),
	}, nil
}

// Dir returns the suite directory.
func (s *Suite) Dir() string {
	return s.dir
}

func (s *Suite) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Data returns the current value of key.
func (s *Suite) Data(key string) ([]byte, error) {
	data, _, err := s.Read(key)
	return data, err
}

// Read returns the current value of key together with its write time. Both
// come from the same open file, so a concurrent Set cannot pair one value
// with the other's time.
func (s *Suite) Read(key string) ([]byte, time.Time, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, time.Time{}, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, time.Time{}, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, info.ModTime(), nil
}

// ModTime returns when key was last written.
func (s *Suite) ModTime(key string) (time.Time, error) {
	p, err := s.path(key)
	if err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Set replaces the value of key. The value is written to a temporary file
// in the same directory and renamed over the old one, so a failed write
// leaves the previous value untouched. Writers from any process are
// serialized by a lock file; ctx bounds the wait for it.
func (s *Suite) Set(ctx context.Context, key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock suite: %w", err)
	}
	if !locked {
		return errors.New("failed to lock suite")
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	committed = true
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Suite) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
