package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
)

func (q *Queries) AddMedia(m models.Media) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	_, err = db.Exec(q.rebind(`
		INSERT INTO entry_media (id, entry_id, content_type, data, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		m.ID, m.EntryID, m.ContentType, m.Data, formatTime(m.CreatedAt))
	return err
}

func (q *Queries) GetMedia(id string) (models.Media, error) {
	db, err := q.conn()
	if err != nil {
		return models.Media{}, err
	}
	var m models.Media
	var createdAt string
	err = db.QueryRow(q.rebind(`
		SELECT id, entry_id, content_type, data, created_at
		FROM entry_media WHERE id = ?`), id).
		Scan(&m.ID, &m.EntryID, &m.ContentType, &m.Data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Media{}, notFound("media", id)
	}
	if err != nil {
		return models.Media{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Media{}, fmt.Errorf("failed to parse created_at for media %s: %w", id, err)
	}
	return m, nil
}

func (q *Queries) DeleteMedia(id string) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	result, err := db.Exec(q.rebind("DELETE FROM entry_media WHERE id = ?"), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("media", id)
	}
	return nil
}

// mediaFor loads media joined to its entry, grouped by entry id in
// attachment order. The payload is only read when withData is set.
func (q *Queries) mediaFor(clause, arg string, withData bool) (map[string][]models.Media, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}
	data := "NULL"
	if withData {
		data = "m.data"
	}
	rows, err := db.Query(q.rebind(`
		SELECT m.id, m.entry_id, m.content_type, `+data+`, m.created_at
		FROM entry_media m JOIN habit_entries e ON e.id = m.entry_id
		WHERE `+clause+`
		ORDER BY m.created_at, m.id`), arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]models.Media)
	for rows.Next() {
		var m models.Media
		var createdAt string
		if err := rows.Scan(&m.ID, &m.EntryID, &m.ContentType, &m.Data, &createdAt); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			logger.Warn("Skipping unreadable media row", "media_id", m.ID, "error", err)
			continue
		}
		out[m.EntryID] = append(out[m.EntryID], m)
	}
	return out, rows.Err()
}
