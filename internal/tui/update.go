package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.fail("load", msg.err)
			return m, nil
		}
		m.snapshot = msg.habits
		m.loaded = true
		m.rebuild()
		return m, nil

	case toggledMsg:
		if msg.err != nil {
			m.fail("toggle", msg.err)
			return m, nil
		}
		m.replace(msg.habit)
		m.rebuild()
		return m, nil

	case addedMsg:
		if msg.err != nil {
			m.fail("add", msg.err)
			return m, nil
		}
		m.replace(msg.habit)
		m.rebuild()
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.fail("delete", msg.err)
			return m, nil
		}
		for i, h := range m.snapshot {
			if h.ID == msg.id {
				m.snapshot = append(m.snapshot[:i:i], m.snapshot[i+1:]...)
				break
			}
		}
		m.rebuild()
		return m, nil

	case deletedAllMsg:
		if msg.err != nil {
			m.fail("delete all", msg.err)
			// Part of the batch may have gone through.
			return m, m.load()
		}
		logger.Info("Deleted all habits from TUI", "count", msg.count)
		m.snapshot = nil
		m.showDetail = false
		m.rebuild()
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit:
		return m.updateForm(msg)
	case constants.StateConfirmDelete, constants.StateConfirmDeleteAll:
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keys.Dismiss):
		switch {
		case m.notice != "":
			m.notice = ""
		case m.showDetail:
			m.showDetail = false
		}
	case key.Matches(keyMsg, m.keys.Tab):
		m.state = (m.state + 1) % tabCount
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.state = (m.state - 1 + tabCount) % tabCount
	case key.Matches(keyMsg, m.keys.Refresh):
		m.notice = ""
		return m, m.load()
	case m.state == constants.StateHabits:
		return m.updateHabits(keyMsg)
	}
	return m, nil
}

func (m Model) updateHabits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PrevDay):
		m.day = m.day.AddDays(-1)
		m.rebuild()
	case key.Matches(msg, m.keys.NextDay):
		if m.day.Before(m.today) {
			m.day = m.day.AddDays(1)
			m.rebuild()
		}
	case key.Matches(msg, m.keys.Today):
		m.day = m.today
		m.rebuild()
	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.selected(); ok {
			return m, m.toggle(row.Habit.ID, m.day)
		}
	case key.Matches(msg, m.keys.Analysis):
		if _, ok := m.selected(); ok {
			m.showDetail = !m.showDetail
		}
	case key.Matches(msg, m.keys.Add):
		m.habitForm = &HabitFormModel{Type: models.HabitDaily}
		m.form = newHabitForm(m.habitForm)
		m.state = constants.StateAddHabit
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Delete):
		if row, ok := m.selected(); ok {
			m.pendingID = row.Habit.ID
			m.pendingName = row.Habit.Name
			m.state = constants.StateConfirmDelete
		}
	case key.Matches(msg, m.keys.DeleteAll):
		if len(m.snapshot) > 0 {
			m.state = constants.StateConfirmDeleteAll
		}
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.state = constants.StateHabits
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = constants.StateHabits
		m.form = nil
		in, err := m.habitForm.Input()
		if err != nil {
			m.fail("add", err)
			return m, nil
		}
		return m, m.add(in)
	case huh.StateAborted:
		m.state = constants.StateHabits
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		state := m.state
		m.state = constants.StateHabits
		m.showDetail = false
		if state == constants.StateConfirmDeleteAll {
			return m, m.removeAll()
		}
		id := m.pendingID
		m.pendingID, m.pendingName = "", ""
		return m, m.remove(id)
	case "n", "N", "esc", "q":
		m.state = constants.StateHabits
		m.pendingID, m.pendingName = "", ""
	}
	return m, nil
}
