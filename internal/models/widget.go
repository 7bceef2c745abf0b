package models

import "github.com/julianstephens/peakstreak/internal/calendar"

// WidgetHabit is one row of the snapshot shared with the widget process.
// CurrentStreak is computed at publish time and is only a placeholder for
// the consumer, which recomputes it from CompletedDates.
type WidgetHabit struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Icon           string         `json:"icon"`
	ColorHex       string         `json:"colorHex"`
	CurrentStreak  int            `json:"currentStreak"`
	CompletedDates []calendar.Day `json:"completedDates"`
}

// WidgetCalendar is the day boundary the app records days with, published
// next to the habit rows.
type WidgetCalendar struct {
	Timezone  string `json:"timezone"`
	WeekStart string `json:"weekStart"`
}
