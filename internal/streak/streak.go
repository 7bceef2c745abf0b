// Package streak derives streaks, completion rates, chart points and
// contribution-grid cells from a set of completed days.
//
// Everything here is a pure function of its arguments: callers supply the
// completed days and "today" explicitly. The package only depends on
// internal/calendar so both the primary binary and the widget binary link the
// exact same implementation.
package streak

import (
	"sort"

	"github.com/julianstephens/peakstreak/internal/calendar"
)

// DaySet is the set of days marked completed.
type DaySet map[calendar.Day]struct{}

// NewDaySet builds a set from the given days; zero days are ignored.
func NewDaySet(days ...calendar.Day) DaySet {
	set := make(DaySet, len(days))
	for _, d := range days {
		set.Add(d)
	}
	return set
}

func (s DaySet) Add(d calendar.Day) {
	if d.IsZero() {
		return
	}
	s[d] = struct{}{}
}

func (s DaySet) Contains(d calendar.Day) bool {
	_, ok := s[d]
	return ok
}

func (s DaySet) Len() int { return len(s) }

// Sorted returns the days in ascending order.
func (s DaySet) Sorted() []calendar.Day {
	days := make([]calendar.Day, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// CurrentStreak counts consecutive completed days ending at today, or at
// yesterday when today has not been completed yet. A streak only resets once
// a whole day has been skipped.
func CurrentStreak(set DaySet, today calendar.Day) int {
	cursor := today
	if !set.Contains(cursor) {
		cursor = today.AddDays(-1)
		if !set.Contains(cursor) {
			return 0
		}
	}

	count := 0
	for set.Contains(cursor) {
		count++
		cursor = cursor.AddDays(-1)
	}
	return count
}

// LongestStreak returns the longest run of consecutive completed days ever
// recorded.
func LongestStreak(set DaySet) int {
	longest := 0
	run := 0
	var prev calendar.Day
	for _, d := range set.Sorted() {
		if !prev.IsZero() && prev.AddDays(1) == d {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}
	return longest
}

// clampDays keeps window sizes at a minimum of one day.
func clampDays(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
