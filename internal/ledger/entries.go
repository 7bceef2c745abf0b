package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/internal/validation"
)

// Day maps any instant to its day in the ledger's calendar.
func (l *Ledger) Day(at time.Time) calendar.Day {
	return l.cal.DayOf(at)
}

// lookup returns the entry for the day, or ok=false when none is stored.
// Unreadable rows surface as ErrNotFound from the store and count as absent;
// saving a new entry for that day replaces them.
func (l *Ledger) lookup(habitID string, day calendar.Day) (models.HabitEntry, bool, error) {
	e, err := l.store.GetHabitEntry(habitID, day)
	if errors.Is(err, storage.ErrNotFound) {
		return models.HabitEntry{}, false, nil
	}
	if err != nil {
		return models.HabitEntry{}, false, err
	}
	return e, true, nil
}

// IsCompleted reports whether the day containing at is marked done.
func (l *Ledger) IsCompleted(habitID string, at time.Time) (bool, error) {
	e, ok, err := l.lookup(habitID, l.Day(at))
	if err != nil {
		return false, err
	}
	return ok && e.Completed, nil
}

// EntryFor returns the stored entry for the day containing at.
func (l *Ledger) EntryFor(habitID string, at time.Time) (models.HabitEntry, bool, error) {
	return l.lookup(habitID, l.Day(at))
}

func (l *Ledger) newEntry(habitID string, day calendar.Day) models.HabitEntry {
	now := l.now()
	return models.HabitEntry{
		ID:        uuid.New().String(),
		HabitID:   habitID,
		Day:       day,
		Completed: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Ledger) checkDay(habitID string, day calendar.Day) error {
	if day.After(l.Today()) {
		return fmt.Errorf("%w: %s", ErrFutureDay, day)
	}
	if _, err := l.store.GetHabit(habitID); err != nil {
		return err
	}
	return nil
}

// ToggleCompletion flips the day containing at and returns the new state.
// An entry that still holds a note or media is kept as not completed;
// otherwise turning a day off removes its entry.
func (l *Ledger) ToggleCompletion(habitID string, at time.Time) (bool, error) {
	day := l.Day(at)
	if err := l.checkDay(habitID, day); err != nil {
		return false, err
	}
	e, ok, err := l.lookup(habitID, day)
	if err != nil {
		return false, err
	}

	switch {
	case !ok:
		e = l.newEntry(habitID, day)
		err = l.store.SaveHabitEntry(e)
	case e.Completed && !e.Annotated():
		e.Completed = false
		err = l.store.DeleteHabitEntry(e.ID)
	default:
		e.Completed = !e.Completed
		e.UpdatedAt = l.now()
		err = l.store.SaveHabitEntry(e)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", day, err)
	}

	logger.Debug("Toggled completion", "habit_id", habitID, "day", day, "completed", e.Completed)
	l.changed()
	return e.Completed, nil
}

// GetOrCreateEntry returns the entry for the day containing at, creating a
// completed entry when none exists.
func (l *Ledger) GetOrCreateEntry(habitID string, at time.Time) (models.HabitEntry, error) {
	e, created, err := l.getOrCreate(habitID, l.Day(at))
	if created {
		l.changed()
	}
	return e, err
}

func (l *Ledger) getOrCreate(habitID string, day calendar.Day) (models.HabitEntry, bool, error) {
	e, ok, err := l.lookup(habitID, day)
	if err != nil || ok {
		return e, false, err
	}
	if err := l.checkDay(habitID, day); err != nil {
		return models.HabitEntry{}, false, err
	}

	e = l.newEntry(habitID, day)
	if err := l.store.SaveHabitEntry(e); err != nil {
		return models.HabitEntry{}, false, fmt.Errorf("failed to create entry for %s: %w", day, err)
	}
	return e, true, nil
}

// SetNote replaces the note of the day containing at. Clearing the note of
// an incomplete entry without media removes the entry.
func (l *Ledger) SetNote(habitID string, at time.Time, note string) (models.HabitEntry, error) {
	note = validation.SanitizeText(note)
	if err := validation.Validate.Var(note, "max=2000"); err != nil {
		return models.HabitEntry{}, fmt.Errorf("note is too long: %w", err)
	}
	day := l.Day(at)
	if note == "" {
		if _, ok, err := l.lookup(habitID, day); err != nil || !ok {
			return models.HabitEntry{}, err
		}
	}

	e, _, err := l.getOrCreate(habitID, day)
	if err != nil {
		return models.HabitEntry{}, err
	}

	e.Note = note
	e.UpdatedAt = l.now()
	if err := l.saveOrPrune(e); err != nil {
		return models.HabitEntry{}, err
	}
	l.changed()
	return e, nil
}

// saveOrPrune persists e, or deletes it when it no longer records anything.
func (l *Ledger) saveOrPrune(e models.HabitEntry) error {
	if !e.Completed && !e.Annotated() {
		return l.store.DeleteHabitEntry(e.ID)
	}
	return l.store.SaveHabitEntry(e)
}

// CompletedDays returns the set of completed days of the habit.
func (l *Ledger) CompletedDays(habitID string) ([]calendar.Day, error) {
	return l.store.GetCompletedDays(habitID)
}
