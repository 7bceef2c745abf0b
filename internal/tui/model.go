package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/peakstreak/internal/color"
	"github.com/julianstephens/peakstreak/internal/constants"
	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/streak"
	"github.com/julianstephens/peakstreak/internal/tui/components/habitlist"
	"github.com/julianstephens/peakstreak/internal/tui/components/history"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateHistory
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type Model struct {
	ledger          *ledger.Ledger
	state           SessionState
	keys            KeyMap
	help            help.Model
	habitList       habitlist.Model
	history         history.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	habitToDeleteID string
	done            int
	total           int
	status          string
	quitting        bool
	width           int
	height          int
}

func NewModel(l *ledger.Ledger) Model {
	m := Model{
		ledger:    l,
		state:     StateToday,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		habitList: habitlist.New(nil, 0, 0),
		history:   history.New(0, 0, constants.DefaultGridWeeks),
	}
	m.refresh()
	return m
}

// now returns noon of the ledger's today so toggles land on the right day
// regardless of the wall-clock hour.
func (m Model) now() time.Time {
	loc := m.ledger.Calendar().Location
	if loc == nil {
		loc = time.Local
	}
	return m.ledger.Today().In(loc).Add(12 * time.Hour)
}

// refresh reloads habits, today's progress and the history of the
// selected habit from the ledger.
func (m *Model) refresh() {
	habits, err := m.ledger.Habits()
	if err != nil {
		m.status = "Failed to load habits: " + err.Error()
		return
	}

	today := m.ledger.Today()
	items := make([]habitlist.Item, 0, len(habits))
	for _, h := range habits {
		set, err := m.ledger.DaySet(h.ID)
		if err != nil {
			m.status = "Failed to load " + h.Name + ": " + err.Error()
			continue
		}
		items = append(items, habitlist.Item{
			Habit:  h,
			Done:   set.Contains(today),
			Streak: streak.CurrentStreak(set, today),
		})
	}
	m.habitList.SetItems(items)

	if done, total, err := m.ledger.CompletedToday(); err == nil {
		m.done, m.total = done, total
	}
	m.loadHistory()
}

func (m *Model) loadHistory() {
	item, ok := m.habitList.Selected()
	if !ok {
		return
	}
	set, err := m.ledger.DaySet(item.Habit.ID)
	if err != nil {
		m.status = err.Error()
		return
	}
	stats, err := m.ledger.Stats(item.Habit.ID, constants.DefaultGridWeeks)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.history.SetHabit(item.Habit, set, stats, m.ledger.Calendar().WeekStart)
}

func (m *Model) startAddHabit() tea.Cmd {
	icon, hex := constants.DefaultIcon, color.DefaultHex
	if settings, err := m.ledger.Store().GetSettings(); err == nil {
		icon, hex = settings.DefaultIcon, color.Normalize(settings.DefaultColor)
	}
	m.habitForm = &HabitFormModel{Icon: icon, Color: hex}
	m.form = NewHabitForm(m.habitForm)
	m.state = StateAddHabit
	return m.form.Init()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		keys = append(keys, m.keys.Toggle, m.keys.Add, m.keys.Delete)
	case StateHistory:
		keys = append(keys, m.history.Keys()...)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		actions = []key.Binding{m.keys.Toggle, m.keys.Add, m.keys.Delete}
	case StateHistory:
		actions = m.history.Keys()
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
