// Package ledger is the per-day completion record of every habit and the
// only code that mutates it.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/internal/validation"
)

var (
	// ErrInvalidHabit is returned when habit input fails validation.
	ErrInvalidHabit = errors.New("invalid habit")
	// ErrFutureDay is returned when a mutation targets a day after today.
	ErrFutureDay = errors.New("day is in the future")
)

// Ledger stores and mutates per-day completion state. Every mutation runs
// the change hook once it has been persisted.
type Ledger struct {
	store    storage.Provider
	cal      calendar.Calendar
	clock    calendar.Clock
	onChange func()
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCalendar sets the calendar used to map instants to days.
func WithCalendar(cal calendar.Calendar) Option {
	return func(l *Ledger) { l.cal = cal }
}

// WithClock sets the source of "now".
func WithClock(clock calendar.Clock) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithChangeHook registers fn to run after every successful mutation.
func WithChangeHook(fn func()) Option {
	return func(l *Ledger) { l.onChange = fn }
}

func New(store storage.Provider, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		cal:   calendar.Default(),
		clock: calendar.SystemClock{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Calendar returns the calendar the ledger normalizes days with.
func (l *Ledger) Calendar() calendar.Calendar {
	return l.cal
}

// Today returns the current day in the ledger's calendar.
func (l *Ledger) Today() calendar.Day {
	return l.cal.Today(l.clock)
}

// Store exposes the backing provider.
func (l *Ledger) Store() storage.Provider {
	return l.store
}

func (l *Ledger) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}

func (l *Ledger) now() time.Time {
	return l.clock.Now()
}

// HabitInput holds user-supplied habit attributes. Empty Icon and Color
// fall back to the stored default preferences.
type HabitInput struct {
	Name  string
	Icon  string
	Color string
}

// HabitPatch changes only the non-nil fields of a habit.
type HabitPatch struct {
	Name  *string
	Icon  *string
	Color *string
}

func (l *Ledger) defaults() (icon, hex string) {
	icon, hex = constants.DefaultIcon, constants.DefaultColor
	settings, err := l.store.GetSettings()
	if err != nil {
		logger.Debug("Using built-in habit defaults", "error", err)
		return icon, hex
	}
	if settings.DefaultIcon != "" {
		icon = settings.DefaultIcon
	}
	if settings.DefaultColor != "" {
		hex = settings.DefaultColor
	}
	return icon, hex
}

func validateHabit(h models.Habit) error {
	if h.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidHabit)
	}
	if err := validation.Struct(h); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHabit, err)
	}
	return nil
}

// CreateHabit stores a new habit. The name is trimmed and must not be
// empty; a malformed colour is replaced by the default accent colour.
func (l *Ledger) CreateHabit(in HabitInput) (models.Habit, error) {
	icon, hex := l.defaults()
	if in.Icon != "" {
		icon = in.Icon
	}
	if in.Color != "" {
		hex = in.Color
	}

	h := models.Habit{
		ID:        uuid.New().String(),
		Name:      validation.SanitizeName(in.Name),
		Icon:      validation.SanitizeName(icon),
		ColorHex:  color.Normalize(hex),
		CreatedAt: l.now(),
	}
	if err := validateHabit(h); err != nil {
		return models.Habit{}, err
	}
	if err := l.store.AddHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}

	logger.Info("Habit created", "id", h.ID, "name", h.Name)
	l.changed()
	return h, nil
}

// UpdateHabit applies patch to the habit with the given id.
func (l *Ledger) UpdateHabit(id string, patch HabitPatch) (models.Habit, error) {
	h, err := l.store.GetHabit(id)
	if err != nil {
		return models.Habit{}, err
	}
	if patch.Name != nil {
		h.Name = validation.SanitizeName(*patch.Name)
	}
	if patch.Icon != nil {
		h.Icon = validation.SanitizeName(*patch.Icon)
	}
	if patch.Color != nil {
		h.ColorHex = color.Normalize(*patch.Color)
	}
	if err := validateHabit(h); err != nil {
		return models.Habit{}, err
	}
	if err := l.store.UpdateHabit(h); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}

	l.changed()
	return h, nil
}

// DeleteHabit removes the habit and everything it owns.
func (l *Ledger) DeleteHabit(id string) error {
	if err := l.store.DeleteHabit(id); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	logger.Info("Habit deleted", "id", id)
	l.changed()
	return nil
}

// Habits returns all habits in creation order.
func (l *Ledger) Habits() ([]models.Habit, error) {
	return l.store.GetAllHabits()
}

// Habit resolves ref as an id first and then as an exact name.
func (l *Ledger) Habit(ref string) (models.Habit, error) {
	if _, err := uuid.Parse(ref); err == nil {
		h, err := l.store.GetHabit(ref)
		if err == nil || !errors.Is(err, storage.ErrNotFound) {
			return h, err
		}
	}
	return l.store.GetHabitByName(validation.SanitizeName(ref))
}
