// Package widget is the isolated display process. It reads only the
// snapshot in the shared suite and recomputes every derived value itself.
package widget

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/snapshot"
)

// EmptyReason explains why no habit is shown.
type EmptyReason string

const (
	ReasonNone        EmptyReason = ""
	ReasonNoHabits    EmptyReason = "no_habits"
	ReasonUnavailable EmptyReason = "unavailable"
	ReasonStale       EmptyReason = "stale"
)

// Entry is what the widget shows from Date until the next entry.
type Entry struct {
	Date time.Time `json:"date"`
	View View      `json:"view"`
}

// Timeline is a set of entries plus when the host should ask again.
type Timeline struct {
	Entries     []Entry   `json:"entries"`
	NextRefresh time.Time `json:"next_refresh"`
}

// Provider turns the shared snapshot into timeline entries.
type Provider struct {
	suite  snapshot.Reader
	key    string
	calKey string
	cfg    config.WidgetConfig
	cal    calendar.Calendar
	clock  calendar.Clock
	log    *log.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithCalendar sets the calendar used to decide what "today" is when the app
// has not published one.
func WithCalendar(cal calendar.Calendar) Option {
	return func(p *Provider) { p.cal = cal }
}

// WithClock sets the source of "now".
func WithClock(clock calendar.Clock) Option {
	return func(p *Provider) { p.clock = clock }
}

// WithKey overrides the suite key the snapshot is read from.
func WithKey(key string) Option {
	return func(p *Provider) { p.key = key }
}

func NewProvider(suite snapshot.Reader, cfg config.WidgetConfig, opts ...Option) *Provider {
	p := &Provider{
		suite:  suite,
		key:    constants.WidgetHabitsKey,
		calKey: constants.WidgetCalendarKey,
		cfg:    cfg,
		cal:    calendar.Default(),
		clock:  calendar.SystemClock{},
		log:    logger.Component("widget"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cfg.RefreshInterval <= 0 {
		p.cfg.RefreshInterval = constants.DefaultRefreshInterval
	}
	return p
}

// Now returns the provider's current time.
func (p *Provider) Now() time.Time {
	return p.clock.Now()
}

// resolveCalendar returns the calendar published by the app, or the
// configured one when none can be read.
func (p *Provider) resolveCalendar() calendar.Calendar {
	cal, err := snapshot.LoadCalendar(p.suite, p.calKey)
	if err != nil {
		p.log.Debug("Published calendar unavailable, using configured calendar", "key", p.calKey, "error", err)
		return p.cal
	}
	return cal
}

// Select picks the configured habit, falling back to the first row. ok is
// false only when rows is empty.
func Select(rows []models.WidgetHabit, habitID string) (row models.WidgetHabit, ok bool) {
	if len(rows) == 0 {
		return models.WidgetHabit{}, false
	}
	if habitID != "" {
		for _, r := range rows {
			if r.ID == habitID {
				return r, true
			}
		}
	}
	return rows[0], true
}

// PlaceholderHabit is shown in previews before any data exists.
func PlaceholderHabit() models.WidgetHabit {
	return models.WidgetHabit{
		ID:            "placeholder",
		Name:          "Exercise",
		Icon:          "figure.run",
		ColorHex:      color.DefaultHex,
		CurrentStreak: 7,
	}
}

// Placeholder returns a preview entry with a seven day run ending today.
func (p *Provider) Placeholder() Entry {
	now := p.Now()
	cal := p.resolveCalendar()
	today := cal.DayOf(now)
	row := PlaceholderHabit()
	for i := row.CurrentStreak - 1; i >= 0; i-- {
		row.CompletedDates = append(row.CompletedDates, today.AddDays(-i))
	}
	view := Build(row, today, p.cfg.GridWeeks(), cal.WeekStart)
	view.Placeholder = true
	return Entry{Date: now, View: view}
}

// EntryAt reads the snapshot and builds the entry for now. Any failure to
// read it yields an empty state rather than an error.
func (p *Provider) EntryAt(now time.Time) Entry {
	cal := p.resolveCalendar()
	today := cal.DayOf(now)

	rows, written, err := snapshot.Load(p.suite, p.key)
	if err != nil {
		p.log.Debug("Snapshot unavailable", "key", p.key, "error", err)
		return Entry{Date: now, View: EmptyView(ReasonUnavailable, today)}
	}
	if p.cfg.MaxStaleness > 0 && now.Sub(written) > p.cfg.MaxStaleness {
		p.log.Warn("Snapshot is stale", "written", written, "max_staleness", p.cfg.MaxStaleness)
		return Entry{Date: now, View: EmptyView(ReasonStale, today)}
	}

	row, ok := Select(rows, p.cfg.HabitID)
	if !ok {
		return Entry{Date: now, View: EmptyView(ReasonNoHabits, today)}
	}
	if p.cfg.HabitID != "" && row.ID != p.cfg.HabitID {
		p.log.Debug("Configured habit missing from snapshot, using first", "habit_id", p.cfg.HabitID)
	}
	return Entry{Date: now, View: Build(row, today, p.cfg.GridWeeks(), cal.WeekStart)}
}

// Timeline returns a single entry for now and asks to be refreshed one
// refresh interval later.
func (p *Provider) Timeline(now time.Time) Timeline {
	return Timeline{
		Entries:     []Entry{p.EntryAt(now)},
		NextRefresh: now.Add(p.cfg.RefreshInterval),
	}
}
