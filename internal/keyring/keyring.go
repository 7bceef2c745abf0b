// Package keyring keeps the PostgreSQL connection string out of config
// files. The environment variable wins over the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/peakstreak/internal/constants"
)

// EnvConnectionString overrides the keyring when set.
const EnvConnectionString = "PEAKSTREAK_DB_CONNECTION"

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Credentials addresses one secret in the OS keyring.
type Credentials struct {
	Service string
	User    string
}

// Default is the slot used for the database connection string.
var Default = Credentials{Service: constants.AppName, User: constants.DefaultKeyringUser}

// Get reads the secret. A missing entry yields ErrNotFound, any other
// keyring failure wraps ErrKeyringUnavailable.
func (c Credentials) Get() (string, error) {
	secret, err := keyring.Get(c.Service, c.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

// Set stores the secret, replacing any previous value.
func (c Credentials) Set(secret string) error {
	if strings.TrimSpace(secret) == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(c.Service, c.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the secret.
func (c Credentials) Delete() error {
	err := keyring.Delete(c.Service, c.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string from the
// environment, falling back to the default keyring slot.
func ConnectionString() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConnectionString)); v != "" {
		return v, nil
	}
	return Default.Get()
}

// IsAvailable is a best-effort probe of the OS keyring.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
