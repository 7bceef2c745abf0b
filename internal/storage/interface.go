package storage

import (
	"database/sql"
	"errors"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/migration"
	"github.com/julianstephens/peakstreak/internal/models"
)

var (
	// ErrNotFound is returned when a habit, entry or media row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a habit name is already taken.
	ErrDuplicateName = errors.New("a habit with that name already exists")
	// ErrNotInitialized is returned by Load before Init has ever run.
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrSchemaTooNew is returned when the database was written by a newer release.
	ErrSchemaTooNew = migration.ErrSchemaTooNew
)

// Provider is the persistence boundary of the completion ledger. Days are
// civil calendar days; implementations never convert them through a zone.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Migrate() (int, error)
	SchemaVersion() (current, latest int, err error)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	// GetAllHabits returns habits in creation order.
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	// DeleteHabit removes the habit together with its entries and media.
	DeleteHabit(id string) error

	// Habit entries
	GetHabitEntry(habitID string, day calendar.Day) (models.HabitEntry, error)
	GetHabitEntries(habitID string) ([]models.HabitEntry, error)
	// GetCompletedDays returns the days with completed=true in ascending order.
	// Unreadable rows are skipped here as in GetHabitEntry.
	GetCompletedDays(habitID string) ([]calendar.Day, error)
	// GetEntriesWithMedia returns entries holding media, newest day first.
	GetEntriesWithMedia(habitID string) ([]models.HabitEntry, error)
	// SaveHabitEntry inserts or updates the entry keyed by id, replacing any
	// other row stored for the same (habit, day).
	SaveHabitEntry(models.HabitEntry) error
	DeleteHabitEntry(id string) error

	// Media
	AddMedia(models.Media) error
	GetMedia(id string) (models.Media, error)
	DeleteMedia(id string) error

	// Utils
	Backend() string
	GetConfigPath() string
	GetDB() *sql.DB
}
