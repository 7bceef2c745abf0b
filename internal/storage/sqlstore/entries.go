package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/storage"
)

const entryColumns = "id, habit_id, day, completed, note, created_at, updated_at"

func scanEntry(row scanner) (models.HabitEntry, error) {
	var e models.HabitEntry
	var day, createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.HabitID, &day, &e.Completed, &e.Note, &createdAt, &updatedAt); err != nil {
		return models.HabitEntry{}, err
	}

	var err error
	if e.Day, err = calendar.ParseDay(day); err != nil {
		return models.HabitEntry{}, fmt.Errorf("entry %s has invalid day %q: %w", e.ID, day, err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse created_at for entry %s: %w", e.ID, err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse updated_at for entry %s: %w", e.ID, err)
	}
	return e, nil
}

// GetHabitEntry returns the entry for the day with its media. A row that
// cannot be decoded is reported as not found.
func (q *Queries) GetHabitEntry(habitID string, day calendar.Day) (models.HabitEntry, error) {
	db, err := q.conn()
	if err != nil {
		return models.HabitEntry{}, err
	}
	row := db.QueryRow(q.rebind("SELECT "+entryColumns+" FROM habit_entries WHERE habit_id = ? AND day = ?"), habitID, day.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.HabitEntry{}, notFound("entry", habitID+"/"+day.String())
	}
	if err != nil {
		logger.Warn("Treating unreadable entry as missing", "habit_id", habitID, "day", day, "error", err)
		return models.HabitEntry{}, notFound("entry", habitID+"/"+day.String())
	}

	media, err := q.mediaFor("m.entry_id = ?", e.ID, true)
	if err != nil {
		return models.HabitEntry{}, err
	}
	e.Media = media[e.ID]
	return e, nil
}

// GetHabitEntries returns every entry of the habit in ascending day order.
// Media is attached without its payload.
func (q *Queries) GetHabitEntries(habitID string) ([]models.HabitEntry, error) {
	entries, err := q.entriesWhere("habit_id = ?", "day ASC", habitID)
	if err != nil {
		return nil, err
	}
	media, err := q.mediaFor("e.habit_id = ?", habitID, false)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Media = media[entries[i].ID]
	}
	return entries, nil
}

func (q *Queries) GetEntriesWithMedia(habitID string) ([]models.HabitEntry, error) {
	entries, err := q.entriesWhere(
		"habit_id = ? AND id IN (SELECT entry_id FROM entry_media)", "day DESC", habitID)
	if err != nil {
		return nil, err
	}
	media, err := q.mediaFor("e.habit_id = ?", habitID, true)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Media = media[entries[i].ID]
	}
	return entries, nil
}

func (q *Queries) entriesWhere(clause, order string, args ...any) ([]models.HabitEntry, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(q.rebind("SELECT "+entryColumns+" FROM habit_entries WHERE "+clause+" ORDER BY "+order), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.HabitEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			logger.Warn("Skipping unreadable entry row", "error", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetCompletedDays returns the completed days of the habit in ascending
// order. Rows that cannot be decoded are skipped, as in GetHabitEntry.
func (q *Queries) GetCompletedDays(habitID string) ([]calendar.Day, error) {
	entries, err := q.entriesWhere("habit_id = ? AND completed = ?", "day ASC", habitID, true)
	if err != nil {
		return nil, err
	}
	days := make([]calendar.Day, 0, len(entries))
	for _, e := range entries {
		days = append(days, e.Day)
	}
	return days, nil
}

type staleEntry struct {
	id   string
	note string
}

// SaveHabitEntry inserts or updates the entry by id. Another row stored for
// the same habit and day is one the caller could not read: it is replaced
// along with its media, and its note is kept when the new entry has none.
func (q *Queries) SaveHabitEntry(entry models.HabitEntry) error {
	if entry.Day.IsZero() {
		return errors.New("entry day is required")
	}
	db, err := q.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stale, err := q.staleEntries(tx, entry)
	if err != nil {
		return fmt.Errorf("failed to look up entries on %s: %w", entry.Day, err)
	}
	for _, s := range stale {
		logger.Warn("Replacing unreadable entry", "entry_id", s.id, "habit_id", entry.HabitID, "day", entry.Day)
		if entry.Note == "" {
			entry.Note = s.note
		}
		if _, err := tx.Exec(q.rebind("DELETE FROM entry_media WHERE entry_id = ?"), s.id); err != nil {
			return fmt.Errorf("failed to delete media for entry %s: %w", s.id, err)
		}
		if _, err := tx.Exec(q.rebind("DELETE FROM habit_entries WHERE id = ?"), s.id); err != nil {
			return fmt.Errorf("failed to replace entry %s: %w", s.id, err)
		}
	}

	_, err = tx.Exec(q.rebind(`
		INSERT INTO habit_entries (id, habit_id, day, completed, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			completed = excluded.completed,
			note = excluded.note,
			updated_at = excluded.updated_at`),
		entry.ID, entry.HabitID, entry.Day.String(), entry.Completed, entry.Note,
		formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (q *Queries) staleEntries(tx *sql.Tx, entry models.HabitEntry) ([]staleEntry, error) {
	rows, err := tx.Query(q.rebind(
		"SELECT id, note FROM habit_entries WHERE habit_id = ? AND day = ? AND id <> ?"),
		entry.HabitID, entry.Day.String(), entry.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []staleEntry
	for rows.Next() {
		var s staleEntry
		if err := rows.Scan(&s.id, &s.note); err != nil {
			return nil, err
		}
		stale = append(stale, s)
	}
	return stale, rows.Err()
}

func (q *Queries) DeleteHabitEntry(id string) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(q.rebind("DELETE FROM entry_media WHERE entry_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete media for entry %s: %w", id, err)
	}
	result, err := tx.Exec(q.rebind("DELETE FROM habit_entries WHERE id = ?"), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("entry %s: %w", id, storage.ErrNotFound)
	}
	return tx.Commit()
}
