package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/storage"
)

const habitColumns = "id, name, icon, color_hex, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	if err := row.Scan(&h.ID, &h.Name, &h.Icon, &h.ColorHex, &createdAt); err != nil {
		return models.Habit{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.CreatedAt = t
	return h, nil
}

func (q *Queries) AddHabit(habit models.Habit) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(q.rebind(`
		INSERT INTO habits (id, name, icon, color_hex, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		habit.ID, habit.Name, habit.Icon, habit.ColorHex, formatTime(habit.CreatedAt))
	return q.habitWriteError(err)
}

func (q *Queries) habitWriteError(err error) error {
	if err != nil && q.dialect.UniqueViolation != nil && q.dialect.UniqueViolation(err) {
		return storage.ErrDuplicateName
	}
	return err
}

func (q *Queries) getHabitWhere(clause string, arg string) (models.Habit, error) {
	db, err := q.conn()
	if err != nil {
		return models.Habit{}, err
	}
	row := db.QueryRow(q.rebind("SELECT "+habitColumns+" FROM habits WHERE "+clause), arg)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, notFound("habit", arg)
	}
	return h, err
}

func (q *Queries) GetHabit(id string) (models.Habit, error) {
	return q.getHabitWhere("id = ?", id)
}

func (q *Queries) GetHabitByName(name string) (models.Habit, error) {
	return q.getHabitWhere("name = ?", name)
}

func (q *Queries) GetAllHabits() ([]models.Habit, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query("SELECT " + habitColumns + " FROM habits ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			logger.Warn("Skipping unreadable habit row", "error", err)
			continue
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (q *Queries) UpdateHabit(habit models.Habit) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	result, err := db.Exec(q.rebind(`
		UPDATE habits SET name = ?, icon = ?, color_hex = ?
		WHERE id = ?`),
		habit.Name, habit.Icon, habit.ColorHex, habit.ID)
	if err != nil {
		return q.habitWriteError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("habit", habit.ID)
	}
	return nil
}

// DeleteHabit removes media, entries and the habit in one transaction so
// that the cascade does not depend on foreign key enforcement.
func (q *Queries) DeleteHabit(id string) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(q.rebind(`
		DELETE FROM entry_media
		WHERE entry_id IN (SELECT id FROM habit_entries WHERE habit_id = ?)`), id); err != nil {
		return fmt.Errorf("failed to delete media for habit %s: %w", id, err)
	}
	if _, err := tx.Exec(q.rebind("DELETE FROM habit_entries WHERE habit_id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete entries for habit %s: %w", id, err)
	}
	result, err := tx.Exec(q.rebind("DELETE FROM habits WHERE id = ?"), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("habit", id)
	}
	return tx.Commit()
}
