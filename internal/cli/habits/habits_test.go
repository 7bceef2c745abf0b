package habits

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/peakstreak/internal/backup"
	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/cli"
	"github.com/julianstephens/peakstreak/internal/config"
	"github.com/julianstephens/peakstreak/internal/storage/sqlite"
)

// 2026-10-14 12:00 UTC, a Wednesday.
var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T) (*cli.Context, string) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	cfg := config.Default()
	cfg.Database = dbPath
	cfg.GroupDir = filepath.Join(tempDir, "group")
	cfg.Timezone = "UTC"

	ctx := &cli.Context{
		Store:  store,
		Config: cfg,
		Clock:  calendar.FixedClock{T: now},
	}
	if err := ctx.Wire(); err != nil {
		t.Fatalf("failed to wire context: %v", err)
	}
	return ctx, dbPath
}

func addHabit(t *testing.T, ctx *cli.Context, name string) {
	t.Helper()
	if err := (&HabitAddCmd{Name: name}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}
}

func TestHabitAddCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&HabitAddCmd{Name: "Read", Icon: "book.fill", Color: "ocean"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	h, err := ctx.Ledger.Habit("Read")
	if err != nil {
		t.Fatalf("failed to find habit: %v", err)
	}
	if h.Icon != "book.fill" || h.ColorHex != "#007AFF" {
		t.Errorf("unexpected habit %+v", h)
	}

	if err := (&HabitAddCmd{}).Run(ctx); err == nil {
		t.Error("expected error for missing name")
	}
	if err := (&HabitAddCmd{Name: "read"}).Run(ctx); err == nil {
		t.Error("expected error for duplicate name")
	}
}

func TestHabitToggleCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Exercise")

	toggle := &HabitToggleCmd{Habit: "Exercise", Date: "today"}
	if err := toggle.Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	h, _ := ctx.Ledger.Habit("Exercise")
	done, err := ctx.Ledger.IsCompleted(h.ID, now)
	if err != nil || !done {
		t.Fatalf("expected today completed, got %v, %v", done, err)
	}

	if err := toggle.Run(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	done, _ = ctx.Ledger.IsCompleted(h.ID, now)
	if done {
		t.Error("expected today unmarked after second toggle")
	}

	if err := (&HabitToggleCmd{Habit: "Exercise", Date: "2026-10-15"}).Run(ctx); err == nil {
		t.Error("expected error toggling a future day")
	}
	if err := (&HabitToggleCmd{Habit: "Exercise", Date: "10/13/2026"}).Run(ctx); err == nil {
		t.Error("expected error for malformed date")
	}
	if err := (&HabitToggleCmd{Habit: "Nope", Date: "today"}).Run(ctx); err == nil {
		t.Error("expected error for unknown habit")
	}
}

func TestHabitNoteCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Journal")

	if err := (&HabitNoteCmd{Habit: "Journal", Text: "felt good", Date: "yesterday"}).Run(ctx); err != nil {
		t.Fatalf("note failed: %v", err)
	}

	h, _ := ctx.Ledger.Habit("Journal")
	e, ok, err := ctx.Ledger.EntryFor(h.ID, now.AddDate(0, 0, -1))
	if err != nil || !ok {
		t.Fatalf("expected entry, got ok=%v err=%v", ok, err)
	}
	if e.Note != "felt good" || e.Completed {
		t.Errorf("unexpected entry %+v", e)
	}

	if err := (&HabitNoteCmd{Habit: "Journal", Date: "yesterday", Clear: true}).Run(ctx); err != nil {
		t.Fatalf("clear note failed: %v", err)
	}
	e, _, _ = ctx.Ledger.EntryFor(h.ID, now.AddDate(0, 0, -1))
	if e.Note != "" {
		t.Errorf("expected cleared note, got %q", e.Note)
	}
}

func TestHabitEditCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Walk")

	name := "Long walk"
	if err := (&HabitEditCmd{Habit: "Walk", Name: &name}).Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if _, err := ctx.Ledger.Habit("Long walk"); err != nil {
		t.Errorf("expected renamed habit: %v", err)
	}
	if err := (&HabitEditCmd{Habit: "Walk", Name: &name}).Run(ctx); err == nil {
		t.Error("expected error for old name")
	}
}

func TestHabitViews(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Stretch")
	for _, d := range []string{"2026-10-12", "2026-10-13", "today"} {
		if err := (&HabitToggleCmd{Habit: "Stretch", Date: d}).Run(ctx); err != nil {
			t.Fatalf("toggle %s failed: %v", d, err)
		}
	}

	tests := []struct {
		name string
		cmd  interface{ Run(*cli.Context) error }
	}{
		{"list", &HabitListCmd{IDs: true}},
		{"today", &HabitTodayCmd{}},
		{"show", &HabitShowCmd{Habit: "Stretch", Weeks: 4}},
		{"show clamps weeks", &HabitShowCmd{Habit: "Stretch", Weeks: 500}},
		{"log grid", &HabitLogCmd{Habit: "Stretch", Weeks: 10}},
		{"log current month", &HabitLogCmd{Habit: "Stretch", Month: "current"}},
		{"log previous month", &HabitLogCmd{Habit: "Stretch", Month: "2026-10", Prev: 1}},
		{"media", &HabitMediaCmd{Habit: "Stretch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); err != nil {
				t.Errorf("%s failed: %v", tt.name, err)
			}
		})
	}

	if err := (&HabitLogCmd{Habit: "Stretch", Month: "October"}).Run(ctx); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestHabitAttachAndDetach(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addHabit(t, ctx, "Sketch")

	// Smallest valid PNG signature plus IHDR chunk header.
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	imgPath := filepath.Join(t.TempDir(), "sketch.png")
	if err := os.WriteFile(imgPath, png, 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	if err := (&HabitAttachCmd{Habit: "Sketch", File: imgPath, Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	h, _ := ctx.Ledger.Habit("Sketch")
	entries, err := ctx.Ledger.EntriesWithMedia(h.ID)
	if err != nil || len(entries) != 1 || len(entries[0].Media) != 1 {
		t.Fatalf("expected one entry with media, got %+v (%v)", entries, err)
	}

	mediaID := entries[0].Media[0].ID
	if err := (&HabitDetachCmd{Habit: "Sketch", MediaID: mediaID, Date: "today"}).Run(ctx); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	entries, _ = ctx.Ledger.EntriesWithMedia(h.ID)
	if len(entries) != 0 {
		t.Errorf("expected no media after detach, got %d entries", len(entries))
	}

	txtPath := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(txtPath, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("failed to write text: %v", err)
	}
	if err := (&HabitAttachCmd{Habit: "Sketch", File: txtPath, Date: "today"}).Run(ctx); err == nil {
		t.Error("expected error attaching non-image")
	}
}

func TestHabitDeleteCmdTakesBackup(t *testing.T) {
	ctx, dbPath := setupTestContext(t)
	addHabit(t, ctx, "Meditate")

	if err := (&HabitDeleteCmd{Habit: "Meditate"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := ctx.Ledger.Habit("Meditate"); err == nil {
		t.Error("expected habit to be gone")
	}

	backups, err := backup.NewManager(dbPath).ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 automatic backup, got %d", len(backups))
	}

	if err := (&HabitDeleteCmd{Habit: "Meditate"}).Run(ctx); err == nil {
		t.Error("expected error deleting unknown habit")
	}
}
