// Package calendar models civil calendar days independently of any time zone
// and provides the Clock and Calendar capabilities used to map wall-clock
// instants onto those days.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the canonical day encoding (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// Day is a calendar day with no time-of-day and no zone. The zero value is
// not a valid day; use IsZero to test for it.
type Day struct {
	t time.Time // always midnight UTC
}

// NewDay returns the day for the given year, month and day of month.
// Out-of-range values are normalized the same way time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q (expected YYYY-MM-DD): %w", s, err)
	}
	return Day{t: t}, nil
}

// MustParseDay is like ParseDay but panics on error. Intended for tests and
// constants.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Year() int { return d.t.Year() }

func (d Day) Month() time.Month { return d.t.Month() }

func (d Day) DayOfMonth() int { return d.t.Day() }

func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns the same day of month n months later, normalized like
// time.AddDate.
func (d Day) AddMonths(n int) Day {
	return Day{t: d.t.AddDate(0, n, 0)}
}

// Before reports whether d is strictly earlier than other.
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool { return d.t.After(other.t) }

// DaysUntil returns the number of days from d to other (negative when other
// is earlier).
func (d Day) DaysUntil(other Day) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// StartOfMonth returns the first day of d's month.
func (d Day) StartOfMonth() Day {
	return NewDay(d.Year(), d.Month(), 1)
}

// DaysInMonth returns the number of days in d's month.
func (d Day) DaysInMonth() int {
	return NewDay(d.Year(), d.Month()+1, 0).DayOfMonth()
}

// In returns local midnight of d in loc.
func (d Day) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.DayOfMonth(), 0, 0, 0, 0, loc)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateFormat)
}

// MarshalText encodes the day as YYYY-MM-DD so JSON round-trips never
// depend on a time zone.
func (d Day) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("cannot marshal zero day")
	}
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Calendar maps instants to days in a location and fixes the first day of
// the week.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// Default returns a Sunday-aligned calendar in the system's local zone.
func Default() Calendar {
	return Calendar{Location: time.Local, WeekStart: time.Sunday}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// DayOf truncates t to its calendar day in the calendar's location.
func (c Calendar) DayOf(t time.Time) Day {
	lt := t.In(c.location())
	return NewDay(lt.Year(), lt.Month(), lt.Day())
}

// Today returns the current day according to clock.
func (c Calendar) Today(clock Clock) Day {
	return c.DayOf(clock.Now())
}

// StartOfDay returns local midnight of the day containing t.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	return c.DayOf(t).In(c.location())
}

// StartOfWeek returns the first day of the week containing d.
func (c Calendar) StartOfWeek(d Day) Day {
	offset := (int(d.Weekday()) - int(c.WeekStart) + 7) % 7
	return d.AddDays(-offset)
}

// WeekdayIndex returns d's position within its week, 0 for WeekStart.
func (c Calendar) WeekdayIndex(d Day) int {
	return (int(d.Weekday()) - int(c.WeekStart) + 7) % 7
}

// LoadLocation resolves an IANA zone name; "" and "Local" map to time.Local.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// ParseWeekday accepts full or three-letter English names or 0-6 (0=Sunday).
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sun", "sunday", "0":
		return time.Sunday, nil
	case "mon", "monday", "1":
		return time.Monday, nil
	case "tue", "tuesday", "2":
		return time.Tuesday, nil
	case "wed", "wednesday", "3":
		return time.Wednesday, nil
	case "thu", "thursday", "4":
		return time.Thursday, nil
	case "fri", "friday", "5":
		return time.Friday, nil
	case "sat", "saturday", "6":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %s", s)
}

// New builds a Calendar from a zone name and week-start name.
func New(timezone, weekStart string) (Calendar, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return Calendar{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	ws, err := ParseWeekday(weekStart)
	if err != nil {
		return Calendar{}, err
	}
	return Calendar{Location: loc, WeekStart: ws}, nil
}
