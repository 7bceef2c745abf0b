package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/storage/sqlite"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Database = filepath.Join(dir, "test.db")
	cfg.GroupDir = filepath.Join(dir, "group")
	cfg.Timezone = "UTC"
	return cfg
}

// setupTestContext returns a context over an uninitialized SQLite store.
func setupTestContext(t *testing.T) (*cli.Context, string) {
	tempDir := t.TempDir()
	cfg := testConfig(tempDir)
	store := sqlite.NewStore(cfg.Database)

	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	return &cli.Context{
		Store:  store,
		Config: cfg,
		Clock:  calendar.FixedClock{T: now},
	}, cfg.Database
}

// setupInitializedContext returns a wired context over a fresh database.
func setupInitializedContext(t *testing.T) *cli.Context {
	ctx, _ := setupTestContext(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := ctx.Wire(); err != nil {
		t.Fatalf("failed to wire context: %v", err)
	}
	return ctx
}
