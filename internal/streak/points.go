package streak

import (
	"time"

	"github.com/julianstephens/peakstreak/internal/calendar"
)

// DailyPoint is one day of a completion chart.
type DailyPoint struct {
	Day       calendar.Day `json:"day"`
	Completed bool         `json:"completed"`
}

// Value is 1 for a completed day and 0 otherwise.
func (p DailyPoint) Value() int {
	if p.Completed {
		return 1
	}
	return 0
}

// WeeklyPoint aggregates one calendar week.
type WeeklyPoint struct {
	WeekStart      calendar.Day `json:"week_start"`
	CompletedCount int          `json:"completed_count"`
	TotalCount     int          `json:"total_count"`
}

// CompletionRate is CompletedCount/TotalCount, or 0 for a week with no
// countable days.
func (p WeeklyPoint) CompletionRate() float64 {
	if p.TotalCount <= 0 {
		return 0
	}
	return float64(p.CompletedCount) / float64(p.TotalCount)
}

// DailyPoints returns exactly n points (n clamped to at least 1) covering
// [end-n+1, end] in ascending order.
func DailyPoints(set DaySet, end calendar.Day, n int) []DailyPoint {
	n = clampDays(n)
	start := end.AddDays(-(n - 1))

	points := make([]DailyPoint, 0, n)
	for i := 0; i < n; i++ {
		d := start.AddDays(i)
		points = append(points, DailyPoint{Day: d, Completed: set.Contains(d)})
	}
	return points
}

// CompletionRate is the share of completed days in [end-n+1, end].
func CompletionRate(set DaySet, end calendar.Day, n int) float64 {
	points := DailyPoints(set, end, n)
	if len(points) == 0 {
		return 0
	}
	completed := 0
	for _, p := range points {
		if p.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(points))
}

// LastWeeks returns count weeks of seven days each. The final week is the one
// containing today; earlier weeks precede it in ascending order.
func LastWeeks(today calendar.Day, count int, weekStart time.Weekday) [][]calendar.Day {
	count = clampDays(count)
	cal := calendar.Calendar{WeekStart: weekStart}
	first := cal.StartOfWeek(today).AddDays(-7 * (count - 1))

	weeks := make([][]calendar.Day, 0, count)
	cursor := first
	for w := 0; w < count; w++ {
		week := make([]calendar.Day, 7)
		for i := range week {
			week[i] = cursor
			cursor = cursor.AddDays(1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// WeeklyPoints aggregates the last w weeks ending with the week that contains
// end. Days after end never count toward TotalCount.
func WeeklyPoints(set DaySet, end calendar.Day, w int, weekStart time.Weekday) []WeeklyPoint {
	weeks := LastWeeks(end, w, weekStart)

	points := make([]WeeklyPoint, 0, len(weeks))
	for _, week := range weeks {
		p := WeeklyPoint{WeekStart: week[0]}
		for _, d := range week {
			if d.After(end) {
				continue
			}
			p.TotalCount++
			if set.Contains(d) {
				p.CompletedCount++
			}
		}
		points = append(points, p)
	}
	return points
}
