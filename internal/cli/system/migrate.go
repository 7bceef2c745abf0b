package system

import (
	"fmt"

	"github.com/julianstephens/peakstreak/internal/cli"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current >= latest {
		fmt.Printf("No migrations to apply. Database is up to date (version %d).\n", current)
		return nil
	}

	if ctx.Store.GetConfigPath() != "" {
		ctx.PerformAutomaticBackup()
	}

	count, err := ctx.Store.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Successfully applied %d migration(s). Schema version: %d\n", count, latest)
	return nil
}
