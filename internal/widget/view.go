package widget

import (
	"time"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/streak"
)

// View is everything the renderer needs for one habit. All values are
// derived from CompletedDates as of Today; the publisher's CurrentStreak is
// ignored.
type View struct {
	Empty          bool            `json:"empty"`
	Reason         EmptyReason     `json:"reason,omitempty"`
	Placeholder    bool            `json:"placeholder,omitempty"`
	HabitID        string          `json:"habit_id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Icon           string          `json:"icon,omitempty"`
	ColorHex       string          `json:"color_hex,omitempty"`
	Today          calendar.Day    `json:"today"`
	CompletedToday bool            `json:"completed_today"`
	CurrentStreak  int             `json:"current_streak"`
	Cells          [][]streak.Cell `json:"cells,omitempty"`
}

// EmptyView is shown when there is nothing trustworthy to display.
func EmptyView(reason EmptyReason, today calendar.Day) View {
	return View{Empty: true, Reason: reason, Today: today}
}

// Build computes the view of row as of today with weeks grid columns.
func Build(row models.WidgetHabit, today calendar.Day, weeks int, weekStart time.Weekday) View {
	set := streak.NewDaySet(row.CompletedDates...)
	return View{
		HabitID:        row.ID,
		Name:           row.Name,
		Icon:           row.Icon,
		ColorHex:       color.Normalize(row.ColorHex),
		Today:          today,
		CompletedToday: set.Contains(today),
		CurrentStreak:  streak.CurrentStreak(set, today),
		Cells:          streak.Grid(set, today, weeks, weekStart),
	}
}
