package sqlstore

import (
	"fmt"

	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/storage"
)

// DefaultSettings are written by Init on a fresh database.
func DefaultSettings() models.Settings {
	return models.Settings{
		Timezone:     constants.DefaultTimezone,
		WeekStart:    constants.DefaultWeekStart,
		DefaultIcon:  constants.DefaultIcon,
		DefaultColor: constants.DefaultColor,
	}
}

func (q *Queries) GetSettings() (models.Settings, error) {
	db, err := q.conn()
	if err != nil {
		return models.Settings{}, err
	}
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		return models.Settings{}, err
	}
	defer rows.Close()

	settings := models.Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.Settings{}, err
		}
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingWeekStart:
			settings.WeekStart = value
		case constants.SettingDefaultIcon:
			settings.DefaultIcon = value
		case constants.SettingDefaultColor:
			settings.DefaultColor = value
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return models.Settings{}, err
	}

	if count == 0 {
		return models.Settings{}, fmt.Errorf("settings: %w", storage.ErrNotFound)
	}
	return settings, nil
}

func (q *Queries) SaveSettings(settings models.Settings) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	upsert := q.rebind(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	values := map[string]string{
		constants.SettingTimezone:     settings.Timezone,
		constants.SettingWeekStart:    settings.WeekStart,
		constants.SettingDefaultIcon:  settings.DefaultIcon,
		constants.SettingDefaultColor: settings.DefaultColor,
	}
	for key, value := range values {
		if _, err := tx.Exec(upsert, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}
