package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/peakstreak/internal/backup"
	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/notifier"
	"github.com/julianstephens/peakstreak/internal/shared"
	"github.com/julianstephens/peakstreak/internal/snapshot"
	"github.com/julianstephens/peakstreak/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Config    *config.Config
	Ledger    *ledger.Ledger
	Publisher *snapshot.Publisher
	Clock     calendar.Clock
}

// Open loads the store and wires the ledger to the snapshot publisher so
// every mutation republishes the widget snapshot.
func (c *Context) Open() error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	return c.Wire()
}

// Wire builds the ledger and publisher over an already loaded store.
func (c *Context) Wire() error {
	if c.Config == nil {
		c.Config = config.Default()
	}
	if c.Clock == nil {
		c.Clock = calendar.SystemClock{}
	}

	cal, err := c.Calendar()
	if err != nil {
		return err
	}
	c.Ledger = ledger.New(c.Store,
		ledger.WithCalendar(cal),
		ledger.WithClock(c.Clock),
		ledger.WithChangeHook(c.Publish),
	)

	suite, err := shared.Open(c.Config.GroupDir)
	if err != nil {
		logger.Warn("Shared suite unavailable, widget snapshot disabled", "dir", c.Config.GroupDir, "error", err)
		return nil
	}
	c.Publisher = snapshot.NewPublisher(c.Ledger, suite,
		snapshot.WithReloader(notifier.New(c.Config.LockfilePath())),
	)
	return nil
}

// Calendar resolves the day boundaries: stored settings first, overridden
// by any timezone or week start set in the config file.
func (c *Context) Calendar() (calendar.Calendar, error) {
	tz, ws := constants.DefaultTimezone, constants.DefaultWeekStart
	if settings, err := c.Store.GetSettings(); err == nil {
		if settings.Timezone != "" {
			tz = settings.Timezone
		}
		if settings.WeekStart != "" {
			ws = settings.WeekStart
		}
	}
	if c.Config != nil {
		if c.Config.Timezone != "" {
			tz = c.Config.Timezone
		}
		if c.Config.WeekStart != "" {
			ws = c.Config.WeekStart
		}
	}
	return calendar.New(tz, ws)
}

// Publish writes the widget snapshot. Failures are logged by the
// publisher and never interrupt the command.
func (c *Context) Publish() {
	if c.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Publisher.Publish(ctx)
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if path == "" {
		logger.Debug("Skipping automatic backup for non-file backend", "backend", c.Store.Backend())
		return
	}
	mgr := backup.NewManager(path)
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseDate resolves "today", "yesterday", "" or YYYY-MM-DD to noon of that
// day in the ledger's calendar.
func (c *Context) ParseDate(s string) (time.Time, error) {
	cal := c.Ledger.Calendar()
	today := c.Ledger.Today()

	var day calendar.Day
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		day = today
	case "yesterday":
		day = today.AddDays(-1)
	default:
		d, err := calendar.ParseDay(strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
		}
		day = d
	}
	loc := cal.Location
	if loc == nil {
		loc = time.Local
	}
	return day.In(loc).Add(12 * time.Hour), nil
}
