package streak

import (
	"time"

	"github.com/julianstephens/peakstreak/internal/calendar"
)

// CellState is the display state of a contribution-grid cell.
type CellState int

const (
	CellEmpty CellState = iota
	CellCompleted
	CellFuture
)

func (s CellState) String() string {
	switch s {
	case CellCompleted:
		return "completed"
	case CellFuture:
		return "future"
	default:
		return "empty"
	}
}

// MarshalText encodes the state by name.
func (s CellState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Toggleable reports whether a cell in this state accepts user input.
func (s CellState) Toggleable() bool {
	return s != CellFuture
}

// CellStateFor classifies day relative to today. Future days are always
// CellFuture, whatever the ledger says about them.
func CellStateFor(set DaySet, day, today calendar.Day) CellState {
	if day.After(today) {
		return CellFuture
	}
	if set.Contains(day) {
		return CellCompleted
	}
	return CellEmpty
}

// Intensity is the density tier of a completed cell.
type Intensity int

const (
	IntensityNone Intensity = iota
	IntensityLow
	IntensityLowMid
	IntensityMidHigh
	IntensityHigh
)

// IntensityWindow is the number of days inspected on each side of a cell.
const IntensityWindow = 3

// Opacity maps a tier to the alpha applied to the habit colour.
func (i Intensity) Opacity() float64 {
	switch i {
	case IntensityLow:
		return 0.4
	case IntensityLowMid:
		return 0.6
	case IntensityMidHigh:
		return 0.8
	case IntensityHigh:
		return 1.0
	default:
		return 0
	}
}

// NearbyCount counts completed days in [day-3, day+3].
func NearbyCount(set DaySet, day calendar.Day) int {
	count := 0
	for offset := -IntensityWindow; offset <= IntensityWindow; offset++ {
		if set.Contains(day.AddDays(offset)) {
			count++
		}
	}
	return count
}

// IntensityFor returns the density tier for a completed day and
// IntensityNone for a day that is not completed.
func IntensityFor(set DaySet, day calendar.Day) Intensity {
	if !set.Contains(day) {
		return IntensityNone
	}
	switch n := NearbyCount(set, day); {
	case n <= 1:
		return IntensityLow
	case n <= 3:
		return IntensityLowMid
	case n <= 5:
		return IntensityMidHigh
	default:
		return IntensityHigh
	}
}

// Cell is one square of a contribution grid.
type Cell struct {
	Day       calendar.Day `json:"day"`
	State     CellState    `json:"state"`
	Intensity Intensity    `json:"intensity"`
}

// Grid builds weeks columns of seven cells ending with the week containing
// today. Future cells never carry an intensity.
func Grid(set DaySet, today calendar.Day, weeks int, weekStart time.Weekday) [][]Cell {
	days := LastWeeks(today, weeks, weekStart)

	grid := make([][]Cell, 0, len(days))
	for _, week := range days {
		column := make([]Cell, 0, len(week))
		for _, d := range week {
			c := Cell{Day: d, State: CellStateFor(set, d, today)}
			if c.State == CellCompleted {
				c.Intensity = IntensityFor(set, d)
			}
			column = append(column, c)
		}
		grid = append(grid, column)
	}
	return grid
}

// MonthGrid returns the number of blank leading cells before the first of the
// month (relative to weekStart) and every day of the month containing day.
func MonthGrid(day calendar.Day, weekStart time.Weekday) (padding int, days []calendar.Day) {
	first := day.StartOfMonth()
	cal := calendar.Calendar{WeekStart: weekStart}
	padding = cal.WeekdayIndex(first)

	n := first.DaysInMonth()
	days = make([]calendar.Day, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, first.AddDays(i))
	}
	return padding, days
}
