package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/storage"
	"github.com/julianstephens/peakstreak/internal/storage/postgres"
	"github.com/julianstephens/peakstreak/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	location := ctx.Store.GetConfigPath()
	if location == "" {
		location = ctx.Store.Backend()
	}
	fmt.Printf("Initialized peakstreak storage at: %s\n", location)

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	if err := ctx.Wire(); err != nil {
		return err
	}
	ctx.Publish()
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if dbPath == "" {
		return fmt.Errorf("--force is only supported for SQLite storage (backend: %s)", ctx.Store.Backend())
	}
	// Refuse to delete the database we are about to copy from.
	if c.Source != "" {
		if abs, err := filepath.Abs(dbPath); err == nil {
			dbPath = abs
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if !config.IsPostgres(source) {
		return sqlite.NewStore(config.ExpandPath(source)), nil
	}
	if err := postgres.ValidateConnString(source); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use PGPASSWORD or .pgpass instead")
		}
		return nil, err
	}
	return postgres.New(source), nil
}

// copyData copies settings, habits, entries and media from source into the
// freshly initialized store, keeping every id.
func (c *InitCmd) copyData(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	fmt.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying habits...")
	habits, err := src.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	entryCount, mediaCount := 0, 0
	for _, h := range habits {
		if err := ctx.Store.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}

		entries, err := src.GetHabitEntries(h.ID)
		if err != nil {
			return fmt.Errorf("failed to get entries for habit %s: %w", h.ID, err)
		}
		for _, e := range entries {
			refs := e.Media
			e.Media = nil
			if err := ctx.Store.SaveHabitEntry(e); err != nil {
				return fmt.Errorf("failed to add habit entry %s: %w", e.ID, err)
			}
			entryCount++

			// Entries list media without payloads.
			for _, ref := range refs {
				m, err := src.GetMedia(ref.ID)
				if err != nil {
					return fmt.Errorf("failed to get media %s: %w", ref.ID, err)
				}
				if err := ctx.Store.AddMedia(m); err != nil {
					return fmt.Errorf("failed to add media %s: %w", m.ID, err)
				}
				mediaCount++
			}
		}
	}
	fmt.Printf("    Copied %d habits, %d entries and %d images\n", len(habits), entryCount, mediaCount)

	return nil
}
