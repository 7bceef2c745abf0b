// Package sqlite is the default single-file ledger backend.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/migration"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/internal/storage/sqlstore"
)

// Dialect is the SQLite flavour of the shared queries.
var Dialect = sqlstore.Dialect{
	Name:            "sqlite",
	Placeholder:     migration.QuestionPlaceholder,
	UniqueViolation: isUniqueViolation,
}

type Store struct {
	path string
	sqlstore.Queries
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: path}
}

func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func (s *Store) open() error {
	dsn := s.path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.Attach(db, Dialect)
	return nil
}

// Init creates the database file if needed, applies migrations and writes
// default settings on first run. Running it again is harmless.
func (s *Store) Init() error {
	if s.GetDB() != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.open(); err != nil {
		return err
	}

	applied, err := s.Migrate()
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		logger.Info("Applied schema migrations", "count", applied, "path", s.path)
	}

	if _, err := s.GetSettings(); errors.Is(err, storage.ErrNotFound) {
		if err := s.SaveSettings(sqlstore.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	} else if err != nil {
		return err
	}
	return nil
}

// Load opens an existing database. It does not migrate.
func (s *Store) Load() error {
	if s.GetDB() != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("%w at %s", storage.ErrNotInitialized, s.path)
	}
	if err := s.open(); err != nil {
		return err
	}
	return s.ValidateSchema()
}

func (s *Store) Backend() string {
	return "sqlite"
}

func (s *Store) GetConfigPath() string {
	return s.path
}
