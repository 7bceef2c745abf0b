package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/peakstreak/internal/calendar"
	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/models"
	"github.com/julianstephens/peakstreak/internal/render"
	"github.com/julianstephens/peakstreak/internal/streak"
)

var labelStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	Width(16)

type KeyMap struct {
	PrevMonth key.Binding
	NextMonth key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
	}
}

// Model shows the contribution grid, stats and a month calendar for one
// habit.
type Model struct {
	viewport  viewport.Model
	keys      KeyMap
	Habit     *models.Habit
	set       streak.DaySet
	stats     ledger.Stats
	month     calendar.Day
	weeks     int
	weekStart time.Weekday
}

func New(width, height, weeks int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		weeks:    weeks,
	}
}

func (m Model) Keys() []key.Binding {
	return []key.Binding{m.keys.PrevMonth, m.keys.NextMonth}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.Habit != nil {
		switch {
		case key.Matches(msg, m.keys.PrevMonth):
			m.month = m.month.AddMonths(-1)
			m.Render()
			return m, nil
		case key.Matches(msg, m.keys.NextMonth):
			m.month = m.month.AddMonths(1)
			m.Render()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Habit == nil {
		return "No habit selected."
	}
	return m.viewport.View()
}

// Month is the first day of the month on display.
func (m Model) Month() calendar.Day {
	return m.month
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetHabit loads the habit's history. The month calendar resets to the
// current month when the habit changes.
func (m *Model) SetHabit(h models.Habit, set streak.DaySet, stats ledger.Stats, weekStart time.Weekday) {
	if m.Habit == nil || m.Habit.ID != h.ID || m.month.IsZero() {
		m.month = stats.Today.StartOfMonth()
	}
	m.Habit = &h
	m.set = set
	m.stats = stats
	m.weekStart = weekStart
	m.Render()
}

func (m *Model) Render() {
	if m.Habit == nil {
		m.viewport.SetContent("No habit selected.")
		return
	}

	h := m.Habit
	s := m.stats
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n\n", render.Icon(h.Icon), render.TitleStyle.Render(h.Name))
	b.WriteString(render.Grid(streak.Grid(m.set, s.Today, m.weeks, m.weekStart), h.ColorHex, true))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Current streak", render.StreakStyle.Render(fmt.Sprintf("%d days", s.CurrentStreak))},
		{"Longest streak", fmt.Sprintf("%d days", s.LongestStreak)},
		{"Total completed", fmt.Sprintf("%d", s.TotalCompleted)},
		{"Last 7 days", render.Percent(s.Last7Rate)},
		{"Last 30 days", render.Percent(s.Last30Rate)},
	}
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r[0]) + r[1] + "\n")
	}
	b.WriteString("\n")
	b.WriteString(render.Month(m.set, m.month, s.Today, m.weekStart, h.ColorHex))

	m.viewport.SetContent(b.String())
}
