package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/storage/sqlite"
	"github.com/julianstephens/peakstreak/internal/tui/components/habitlist"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func setupTestLedger(t *testing.T) *ledger.Ledger {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	cal, err := calendar.New("UTC", "sunday")
	if err != nil {
		t.Fatalf("failed to build calendar: %v", err)
	}
	return ledger.New(store, ledger.WithCalendar(cal), ledger.WithClock(calendar.FixedClock{T: now}))
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model
}

func TestToggleUpdatesProgress(t *testing.T) {
	l := setupTestLedger(t)
	h, err := l.CreateHabit(ledger.HabitInput{Name: "Read"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := l.CreateHabit(ledger.HabitInput{Name: "Walk"}); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	m := NewModel(l)
	if m.done != 0 || m.total != 2 {
		t.Fatalf("initial progress = %d/%d, want 0/2", m.done, m.total)
	}

	m = update(t, m, habitlist.ToggleHabitMsg{ID: h.ID})
	if m.done != 1 {
		t.Errorf("progress after toggle = %d/%d, want 1/2", m.done, m.total)
	}
	done, err := l.IsCompleted(h.ID, now)
	if err != nil || !done {
		t.Errorf("expected habit completed today, got %v (%v)", done, err)
	}

	m = update(t, m, habitlist.ToggleHabitMsg{ID: h.ID})
	if m.done != 0 {
		t.Errorf("progress after second toggle = %d, want 0", m.done)
	}
}

func TestTabSwitchesToHistory(t *testing.T) {
	l := setupTestLedger(t)
	h, err := l.CreateHabit(ledger.HabitInput{Name: "Stretch"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	if _, err := l.ToggleCompletion(h.ID, now); err != nil {
		t.Fatalf("failed to toggle: %v", err)
	}

	m := NewModel(l)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateHistory {
		t.Fatalf("state = %d, want history", m.state)
	}
	if !strings.Contains(m.View(), "Stretch") {
		t.Error("history view should show the habit name")
	}

	before := m.history.Month()
	m = update(t, m, keyRunes("["))
	if got := m.history.Month(); got != before.AddMonths(-1) {
		t.Errorf("month after [ = %s, want %s", got, before.AddMonths(-1))
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != StateToday {
		t.Errorf("state = %d, want today", m.state)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	l := setupTestLedger(t)
	h, err := l.CreateHabit(ledger.HabitInput{Name: "Journal"})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	m := NewModel(l)
	m = update(t, m, habitlist.DeleteHabitMsg{ID: h.ID})
	if m.state != StateConfirmDelete {
		t.Fatalf("state = %d, want confirm delete", m.state)
	}

	m = update(t, m, keyRunes("n"))
	if m.state != StateToday {
		t.Errorf("state after cancel = %d, want today", m.state)
	}
	if _, err := l.Habit(h.ID); err != nil {
		t.Errorf("habit should survive a cancelled delete: %v", err)
	}

	m = update(t, m, habitlist.DeleteHabitMsg{ID: h.ID})
	m = update(t, m, keyRunes("y"))
	if _, err := l.Habit(h.ID); err == nil {
		t.Error("habit should be deleted after confirmation")
	}
	if m.total != 0 {
		t.Errorf("total after delete = %d, want 0", m.total)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(setupTestLedger(t))
	next, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Error("view should be empty after quitting")
	}
}
