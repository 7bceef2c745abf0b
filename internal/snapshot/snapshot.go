// Package snapshot projects the ledger into the read-only rows the widget
// process renders, and moves them through the shared suite.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/notifier"
	"github.com/julianstephens/peakstreak/internal/streak"
)

// Source is the read side of the ledger a publisher projects from.
type Source interface {
	Habits() ([]models.Habit, error)
	CompletedDays(habitID string) ([]calendar.Day, error)
	Today() calendar.Day
	Calendar() calendar.Calendar
}

// Writer replaces a whole value in the shared suite.
type Writer interface {
	Set(ctx context.Context, key string, value []byte) error
}

// Reader reads a whole value and its last write time from the shared suite.
type Reader interface {
	Read(key string) ([]byte, time.Time, error)
}

// Reloader tells the widget host its timelines are out of date.
type Reloader interface {
	ReloadAllTimelines(ctx context.Context) error
}

// Publisher writes the complete habit set to the shared suite and then
// signals the widget host.
type Publisher struct {
	source   Source
	suite    Writer
	key      string
	calKey   string
	reloader Reloader
	log      *log.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithKey overrides the suite key the snapshot is stored under.
func WithKey(key string) Option {
	return func(p *Publisher) { p.key = key }
}

// WithReloader sets the reload signal sent after a successful write.
func WithReloader(r Reloader) Option {
	return func(p *Publisher) { p.reloader = r }
}

func NewPublisher(source Source, suite Writer, opts ...Option) *Publisher {
	p := &Publisher{
		source: source,
		suite:  suite,
		key:    constants.WidgetHabitsKey,
		calKey: constants.WidgetCalendarKey,
		log:    logger.Component("publisher"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project builds one row per habit in creation order. CurrentStreak is
// computed for today and is only a hint for the consumer.
func (p *Publisher) Project() ([]models.WidgetHabit, error) {
	habits, err := p.source.Habits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	today := p.source.Today()
	rows := make([]models.WidgetHabit, 0, len(habits))
	for _, h := range habits {
		days, err := p.source.CompletedDays(h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load completed days for %s: %w", h.Name, err)
		}
		set := streak.NewDaySet(days...)
		rows = append(rows, models.WidgetHabit{
			ID:             h.ID,
			Name:           h.Name,
			Icon:           h.Icon,
			ColorHex:       color.Normalize(h.ColorHex),
			CurrentStreak:  streak.CurrentStreak(set, today),
			CompletedDates: set.Sorted(),
		})
	}
	return rows, nil
}

// Publish writes the calendar and the full projection. A failed projection
// or write leaves the previously published snapshot in place. The reload
// signal is sent only after the write succeeded, and a missing widget host
// is not an error.
func (p *Publisher) Publish(ctx context.Context) error {
	rows, err := p.Project()
	if err != nil {
		p.log.Warn("Snapshot projection failed", "error", err)
		return err
	}
	data, err := Encode(rows)
	if err != nil {
		p.log.Warn("Snapshot encoding failed", "error", err)
		return err
	}
	cal, err := EncodeCalendar(p.source.Calendar())
	if err != nil {
		p.log.Warn("Calendar encoding failed", "error", err)
		return err
	}
	if err := p.suite.Set(ctx, p.calKey, cal); err != nil {
		p.log.Warn("Calendar write failed, previous snapshot kept", "key", p.calKey, "error", err)
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	if err := p.suite.Set(ctx, p.key, data); err != nil {
		p.log.Warn("Snapshot write failed, previous snapshot kept", "key", p.key, "error", err)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	p.log.Debug("Snapshot published", "key", p.key, "habits", len(rows))

	if p.reloader == nil {
		return nil
	}
	if err := p.reloader.ReloadAllTimelines(ctx); err != nil {
		if errors.Is(err, notifier.ErrHostNotRunning) {
			p.log.Debug("Widget host not running, skipping reload")
			return nil
		}
		p.log.Warn("Widget reload signal failed", "error", err)
	}
	return nil
}

// Encode serializes rows as a JSON array with every date list sorted.
// Days encode as "YYYY-MM-DD" so no time zone is involved.
func Encode(rows []models.WidgetHabit) ([]byte, error) {
	out := make([]models.WidgetHabit, len(rows))
	for i, r := range rows {
		days := append([]calendar.Day(nil), r.CompletedDates...)
		sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })
		if days == nil {
			days = []calendar.Day{}
		}
		r.CompletedDates = days
		out[i] = r
	}
	return json.Marshal(out)
}

// Decode parses a snapshot written by Encode.
func Decode(data []byte) ([]models.WidgetHabit, error) {
	var rows []models.WidgetHabit
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return rows, nil
}

// Load reads the snapshot stored under key and when it was written.
func Load(suite Reader, key string) ([]models.WidgetHabit, time.Time, error) {
	data, written, err := suite.Read(key)
	if err != nil {
		return nil, time.Time{}, err
	}
	rows, err := Decode(data)
	if err != nil {
		return nil, time.Time{}, err
	}
	return rows, written, nil
}

// EncodeCalendar serializes the zone name and week start of cal.
func EncodeCalendar(cal calendar.Calendar) ([]byte, error) {
	zone := "Local"
	if cal.Location != nil {
		zone = cal.Location.String()
	}
	return json.Marshal(models.WidgetCalendar{
		Timezone:  zone,
		WeekStart: strings.ToLower(cal.WeekStart.String()),
	})
}

// LoadCalendar reads the calendar stored under key.
func LoadCalendar(suite Reader, key string) (calendar.Calendar, error) {
	data, _, err := suite.Read(key)
	if err != nil {
		return calendar.Calendar{}, err
	}
	var wc models.WidgetCalendar
	if err := json.Unmarshal(data, &wc); err != nil {
		return calendar.Calendar{}, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return calendar.New(wc.Timezone, wc.WeekStart)
}
