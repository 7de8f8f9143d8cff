// Package tui is the interactive habit dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/progress"
	"github.com/julianstephens/orbitflow/internal/service"
)

const (
	tabCount  = 3
	barWidth  = 30
	trendRows = 8
)

// HabitFormModel backs the add-habit form.
type HabitFormModel struct {
	Name string
	Type models.HabitType
	Days []string
}

// Input converts the form values into a service input.
func (f *HabitFormModel) Input() (service.HabitInput, error) {
	in := service.HabitInput{Name: f.Name, Type: f.Type}
	if f.Type == models.HabitWeekly {
		freq, err := models.ParseWeekdaySet(f.Days)
		if err != nil {
			return service.HabitInput{}, err
		}
		in.Frequency = freq
	}
	return in, nil
}

type snapshotMsg struct {
	habits []models.Habit
	err    error
}

type toggledMsg struct {
	habit     models.Habit
	completed bool
	err       error
}

type addedMsg struct {
	habit models.Habit
	err   error
}

type deletedMsg struct {
	id  string
	err error
}

type deletedAllMsg struct {
	count int
	err   error
}

type Model struct {
	habits   *service.Habits
	owner    string
	timezone string

	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	bar         progressbar.Model
	form        *huh.Form
	habitForm   *HabitFormModel
	loaded      bool
	snapshot    []models.Habit
	dashboard   service.Dashboard
	trend       []progress.TrendPoint
	today       calendar.Day
	day         calendar.Day
	cursor      int
	showDetail  bool
	pendingID   string
	pendingName string
	notice      string
	quitting    bool
	width       int
	height      int
}

// NewModel builds the dashboard for owner. Nothing is loaded until Init runs.
func NewModel(habits *service.Habits, owner, timezone string) Model {
	today, err := calendar.TodayInTimezone(timezone)
	if err != nil {
		logger.Warn("Falling back to local time", "timezone", timezone, "error", err)
		today = calendar.Today(nil)
	}
	m := Model{
		habits:   habits,
		owner:    owner,
		timezone: timezone,
		state:    constants.StateHabits,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		bar:      progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(barWidth)),
		today:    today,
		day:      today,
	}
	m.rebuild()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateHabits:
		keys = append(keys, m.keys.Toggle, m.keys.Add, m.keys.Delete, m.keys.Analysis)
	case constants.StateTrend:
		keys = append(keys, m.keys.Refresh)
	}
	if m.notice != "" {
		keys = append(keys, m.keys.Dismiss)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}

	var actions []key.Binding
	if m.state == constants.StateHabits {
		actions = []key.Binding{m.keys.Toggle, m.keys.Add, m.keys.Delete, m.keys.DeleteAll, m.keys.Analysis}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	habits, owner := m.habits, m.owner
	return func() tea.Msg {
		list, err := habits.Snapshot(context.Background(), owner)
		return snapshotMsg{habits: list, err: err}
	}
}

func (m Model) toggle(id string, day calendar.Day) tea.Cmd {
	habits, owner := m.habits, m.owner
	return func() tea.Msg {
		h, done, err := habits.Toggle(context.Background(), owner, id, day)
		return toggledMsg{habit: h, completed: done, err: err}
	}
}

func (m Model) add(in service.HabitInput) tea.Cmd {
	habits, owner := m.habits, m.owner
	return func() tea.Msg {
		h, err := habits.Add(context.Background(), owner, in)
		return addedMsg{habit: h, err: err}
	}
}

func (m Model) remove(id string) tea.Cmd {
	habits, owner := m.habits, m.owner
	return func() tea.Msg {
		return deletedMsg{id: id, err: habits.Delete(context.Background(), owner, id)}
	}
}

func (m Model) removeAll() tea.Cmd {
	habits, owner := m.habits, m.owner
	return func() tea.Msg {
		n, err := habits.DeleteAll(context.Background(), owner)
		return deletedAllMsg{count: n, err: err}
	}
}

// rebuild recomputes every derived view from the current snapshot.
func (m *Model) rebuild() {
	m.dashboard = service.BuildDashboard(m.snapshot, m.day)
	points, err := progress.TrendSeries(m.snapshot, constants.DefaultTrendDays, m.today)
	if err != nil {
		logger.Debug("Trend unavailable", "error", err)
		points = nil
	}
	m.trend = points
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// rows flattens the dashboard sections in display order.
func (m Model) rows() []service.HabitRow {
	var rows []service.HabitRow
	for _, sec := range m.dashboard.Sections {
		rows = append(rows, sec.Rows...)
	}
	return rows
}

func (m Model) selected() (service.HabitRow, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return service.HabitRow{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) replace(h models.Habit) {
	for i := range m.snapshot {
		if m.snapshot[i].ID == h.ID {
			m.snapshot[i] = h
			return
		}
	}
	m.snapshot = append(m.snapshot, h)
}

// fail records err as a dismissible notice. The snapshot is left as it was
// so the dashboard keeps showing the last good data.
func (m *Model) fail(action string, err error) {
	logger.Warn("TUI action failed", "action", action, "error", err)
	switch {
	case errors.Is(err, errors.ErrUpstreamUnavailable):
		m.notice = fmt.Sprintf("Storage unavailable, showing last loaded data (%s failed)", action)
	case errors.Is(err, errors.ErrNotFound):
		m.notice = fmt.Sprintf("Habit no longer exists (%s failed); press r to reload", action)
	default:
		m.notice = fmt.Sprintf("%s failed: %v", action, err)
	}
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	typeOptions := make([]huh.Option[models.HabitType], 0, len(models.HabitTypes))
	for _, t := range models.HabitTypes {
		typeOptions = append(typeOptions, huh.NewOption(t.Title(), t))
	}

	var dayOptions []huh.Option[string]
	for _, d := range calendar.Date(2024, 1, 1).Week() {
		token := models.WeekdayToken(d.Weekday())
		dayOptions = append(dayOptions, huh.NewOption(d.Weekday().String(), token))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[models.HabitType]().
				Title("Type").
				Options(typeOptions...).
				Value(&fm.Type),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Days").
				Description("Weekdays this habit is due").
				Options(dayOptions...).
				Value(&fm.Days).
				Validate(func(days []string) error {
					if len(days) == 0 {
						return fmt.Errorf("pick at least one day")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Type != models.HabitWeekly }),
	)
}
