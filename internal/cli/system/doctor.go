package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/peakstreak/internal/backup"
	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/logger"
	"github.com/julianstephens/peakstreak/internal/notifier"
	"github.com/julianstephens/peakstreak/internal/shared"
	"github.com/julianstephens/peakstreak/internal/snapshot"
	"github.com/julianstephens/peakstreak/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*cli.Context) error
	needsDB bool
	// gate failing marks the database unreachable for later checks.
	gate bool
	// warnOnly checks print a warning instead of failing the run.
	warnOnly bool
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable, gate: true},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Clock/timezone", run: checkClockTimezone, needsDB: true},
	{name: "Habit integrity", run: checkHabitsIntegrity, needsDB: true},
	{name: "Shared container", run: checkSharedContainer},
	{name: "Widget snapshot", run: checkSnapshot, warnOnly: true},
	{name: "Widget host", run: checkWidgetHost, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			if c.gate {
				dbReachable = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	db := ctx.Store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d. Run 'peakstreak migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if path == "" {
		return fmt.Errorf("backups are not managed for the %s backend", ctx.Store.Backend())
	}
	backups, err := backup.NewManager(path).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'peakstreak backup create'")
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, err := ctx.Calendar(); err != nil {
		return err
	}
	return nil
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}

	names := make(map[string]string, len(habits))
	for _, h := range habits {
		if err := validation.Struct(h); err != nil {
			return fmt.Errorf("habit %s (%q): %w", h.ID, h.Name, err)
		}
		key := strings.ToLower(h.Name)
		if other, ok := names[key]; ok {
			return fmt.Errorf("habits %s and %s share the name %q", other, h.ID, h.Name)
		}
		names[key] = h.ID

		if _, err := ctx.Store.GetCompletedDays(h.ID); err != nil {
			return fmt.Errorf("failed to read entries of %q: %w", h.Name, err)
		}
	}
	return nil
}

func checkSharedContainer(ctx *cli.Context) error {
	suite, err := shared.Open(ctx.Config.GroupDir)
	if err != nil {
		return err
	}
	const probeKey = "doctorProbe"
	writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := suite.Set(writeCtx, probeKey, []byte("{}")); err != nil {
		return fmt.Errorf("shared container is not writable: %w", err)
	}
	return suite.Remove(probeKey)
}

func checkSnapshot(ctx *cli.Context) error {
	suite, err := shared.Open(ctx.Config.GroupDir)
	if err != nil {
		return err
	}
	rows, written, err := snapshot.Load(suite, constants.WidgetHabitsKey)
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("no widget snapshot yet - run 'peakstreak sync'")
	}
	if err != nil {
		return err
	}

	age := time.Since(written)
	if limit := ctx.Config.Widget.MaxStaleness; limit > 0 && age > limit {
		return fmt.Errorf("snapshot is %s old (limit %s) - run 'peakstreak sync'", age.Round(time.Minute), limit)
	}
	if ctx.Ledger != nil {
		if habits, err := ctx.Ledger.Habits(); err == nil && len(habits) != len(rows) {
			return fmt.Errorf("snapshot has %d habits, database has %d - run 'peakstreak sync'", len(rows), len(habits))
		}
	}
	return nil
}

func checkWidgetHost(ctx *cli.Context) error {
	lock, err := notifier.New(ctx.Config.LockfilePath()).Probe()
	if err != nil {
		if errors.Is(err, notifier.ErrHostNotRunning) {
			return fmt.Errorf("widget host is not running - start it with 'peakstreak-widget serve'")
		}
		return err
	}
	logger.Debug("Widget host found", "pid", lock.PID, "port", lock.Port)
	return nil
}
