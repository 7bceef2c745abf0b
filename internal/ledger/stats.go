package ledger

import (
	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/streak"
)

// Stats summarizes one habit as of today.
type Stats struct {
	Today          calendar.Day
	CompletedToday bool
	CurrentStreak  int
	LongestStreak  int
	TotalCompleted int
	Last7Rate      float64
	Last30Rate     float64
	Weekly         []streak.WeeklyPoint
}

// DaySet loads the completed days of the habit into a set for the engine.
func (l *Ledger) DaySet(habitID string) (streak.DaySet, error) {
	days, err := l.store.GetCompletedDays(habitID)
	if err != nil {
		return nil, err
	}
	return streak.NewDaySet(days...), nil
}

// Stats computes the streak and rate summary of a habit.
func (l *Ledger) Stats(habitID string, weeks int) (Stats, error) {
	set, err := l.DaySet(habitID)
	if err != nil {
		return Stats{}, err
	}
	today := l.Today()
	return Stats{
		Today:          today,
		CompletedToday: set.Contains(today),
		CurrentStreak:  streak.CurrentStreak(set, today),
		LongestStreak:  streak.LongestStreak(set),
		TotalCompleted: set.Len(),
		Last7Rate:      streak.CompletionRate(set, today, 7),
		Last30Rate:     streak.CompletionRate(set, today, 30),
		Weekly:         streak.WeeklyPoints(set, today, weeks, l.cal.WeekStart),
	}, nil
}

// CompletedToday counts habits marked done today out of all habits.
func (l *Ledger) CompletedToday() (done, total int, err error) {
	habits, err := l.store.GetAllHabits()
	if err != nil {
		return 0, 0, err
	}
	today := l.Today()
	for _, h := range habits {
		e, ok, err := l.lookup(h.ID, today)
		if err != nil {
			return 0, 0, err
		}
		if ok && e.Completed {
			done++
		}
	}
	return done, len(habits), nil
}
