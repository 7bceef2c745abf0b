package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/peakstreak/internal/ledger"
	"github.com/julianstephens/peakstreak/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// Tabs, progress line and help take four rows.
		m.habitList.SetSize(msg.Width-h, msg.Height-v-4)
		m.history.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case habitlist.ToggleHabitMsg:
		done, err := m.ledger.ToggleCompletion(msg.ID, m.now())
		switch {
		case errors.Is(err, ledger.ErrFutureDay):
			m.status = "Future days are not editable"
		case err != nil:
			m.status = "Toggle failed: " + err.Error()
		case done:
			m.status = "Marked done for today"
		default:
			m.status = "Unmarked for today"
		}
		m.refresh()
		return m, nil

	case habitlist.AddHabitMsg:
		return m, m.startAddHabit()

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			m.loadHistory()
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.loadHistory()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		m.state = StateToday
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		h, err := m.ledger.CreateHabit(ledger.HabitInput{
			Name:  m.habitForm.Name,
			Icon:  m.habitForm.Icon,
			Color: m.habitForm.Color,
		})
		if err != nil {
			m.status = "Add failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("Added habit %q", h.Name)
		}
		m.form = nil
		m.state = StateToday
		m.refresh()
		return m, nil
	case huh.StateAborted:
		m.form = nil
		m.state = StateToday
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.Confirm):
		if err := m.ledger.DeleteHabit(m.habitToDeleteID); err != nil {
			m.status = "Delete failed: " + err.Error()
		} else {
			m.status = "Habit deleted"
		}
		m.habitToDeleteID = ""
		m.state = StateToday
		m.refresh()
	case key.Matches(k, m.keys.Cancel):
		m.habitToDeleteID = ""
		m.state = StateToday
	}
	return m, nil
}
