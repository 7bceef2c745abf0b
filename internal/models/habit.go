package models

import (
	"time"

	"github.com/julianstephens/peakstreak/internal/calendar"
)

// Habit is a user-defined activity tracked once per calendar day.
type Habit struct {
	ID        string    `json:"id" validate:"required,uuid"`
	Name      string    `json:"name" validate:"required,max=100"`
	Icon      string    `json:"icon" validate:"required,habit_icon"`
	ColorHex  string    `json:"color_hex" validate:"required,len=7,hexcolor"`
	CreatedAt time.Time `json:"created_at"`
}

// HabitEntry records one day of a habit. At most one entry exists per habit
// and day. An entry with Completed=false only survives while it still holds
// a note or media.
type HabitEntry struct {
	ID        string       `json:"id" validate:"required,uuid"`
	HabitID   string       `json:"habit_id" validate:"required"`
	Day       calendar.Day `json:"day"`
	Completed bool         `json:"completed"`
	Note      string       `json:"note,omitempty" validate:"max=2000"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Media     []Media      `json:"media,omitempty"`
}

// HasMedia reports whether any media is attached to the entry.
func (e HabitEntry) HasMedia() bool {
	return len(e.Media) > 0
}

// Annotated reports whether the entry carries a note or media.
func (e HabitEntry) Annotated() bool {
	return e.Note != "" || e.HasMedia()
}

// Media is an attachment owned by exactly one entry.
type Media struct {
	ID          string    `json:"id" validate:"required,uuid"`
	EntryID     string    `json:"entry_id" validate:"required"`
	ContentType string    `json:"content_type" validate:"required,startswith=image/"`
	Data        []byte    `json:"-" validate:"required,max=10485760"`
	CreatedAt   time.Time `json:"created_at"`
}
