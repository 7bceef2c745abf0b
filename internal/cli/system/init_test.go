package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/shared"
	"github.com/julianstephens/peakstreak/internal/snapshot"
	"github.com/julianstephens/peakstreak/internal/storage/sqlite"
)

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath := setupTestContext(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}

	// An empty snapshot is published right away.
	suite, err := shared.Open(ctx.Config.GroupDir)
	if err != nil {
		t.Fatalf("failed to open suite: %v", err)
	}
	rows, _, err := snapshot.Load(suite, constants.WidgetHabitsKey)
	if err != nil {
		t.Fatalf("expected snapshot after init: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty snapshot, got %d rows", len(rows))
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestContext(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := ctx.Ledger.CreateHabit(ledger.HabitInput{Name: "Read"}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 1 {
		t.Errorf("expected habit to survive re-init, got %d habits", len(habits))
	}
}

func TestInitCmd_Force(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := ctx.Ledger.CreateHabit(ledger.HabitInput{Name: "Read"}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected empty database after --force, got %d habits", len(habits))
	}
}

func TestInitCmd_ForceSameSource(t *testing.T) {
	ctx, dbPath := setupTestContext(t)

	cmd := &InitCmd{Force: true, Source: dbPath}
	if err := cmd.Run(ctx); err == nil {
		t.Error("expected error when source and destination are the same")
	}
}

func TestInitCmd_CopyFromSource(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "source.db")
	src := sqlite.NewStore(srcPath)
	if err := src.Init(); err != nil {
		t.Fatalf("failed to init source: %v", err)
	}
	srcLedger := ledger.New(src)
	h, err := srcLedger.CreateHabit(ledger.HabitInput{Name: "Run", Icon: "figure.run"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := srcLedger.ToggleCompletion(h.ID, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	if _, err := srcLedger.AttachMedia(h.ID, now.AddDate(0, 0, -1), png); err != nil {
		t.Fatalf("failed to attach media: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("failed to close source: %v", err)
	}

	ctx, _ := setupTestContext(t)
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	copied, err := ctx.Store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("habit not copied: %v", err)
	}
	if copied.Name != "Run" || copied.Icon != "figure.run" {
		t.Errorf("unexpected copied habit %+v", copied)
	}
	entries, err := ctx.Store.GetEntriesWithMedia(h.ID)
	if err != nil {
		t.Fatalf("failed to get entries: %v", err)
	}
	if len(entries) != 1 || !entries[0].Completed || len(entries[0].Media) != 1 {
		t.Fatalf("expected one completed entry with media, got %+v", entries)
	}
	if string(entries[0].Media[0].Data) != string(png) {
		t.Error("media payload not copied")
	}
}
