package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/progress"
	"github.com/julianstephens/orbitflow/internal/service"
	"github.com/julianstephens/orbitflow/internal/tui/components/trend"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateHabits:
		content = m.viewHabits()
	case constants.StateTrend:
		content = m.viewTrend()
	case constants.StateTips:
		content = m.viewTips()
	case constants.StateAddHabit:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirm(fmt.Sprintf("Delete habit %q?", m.pendingName), "Its completion history is removed too.")
	case constants.StateConfirmDeleteAll:
		content = m.viewConfirm(fmt.Sprintf("Delete all %d habits?", len(m.snapshot)), "A backup is taken first when using SQLite.")
	}

	parts := []string{m.viewTabs()}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice+"  (esc to dismiss)"))
	}
	parts = append(parts, content, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Habits", "Trend", "Tips"} {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHabits() string {
	if !m.loaded && m.notice == "" {
		return docStyle.Render(mutedStyle.Render("Loading habits..."))
	}

	var b strings.Builder
	label := m.day.String() + " (" + m.day.Weekday().String() + ")"
	if m.day.Equal(m.today) {
		label += " today"
	}
	b.WriteString(headerStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Overall %s %d%%\n", m.bar.ViewAs(m.dashboard.Summary.Overall/100), progress.Round(m.dashboard.Summary.Overall)))

	idx := 0
	for _, sec := range m.dashboard.Sections {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s %d%%\n",
			sectionStyle.Render(fmt.Sprintf("%-8s", sec.Type.Title())),
			m.bar.ViewAs(sec.Progress/100),
			progress.Round(sec.Progress)))
		if len(sec.Rows) == 0 {
			b.WriteString(mutedStyle.Render("  no habits"))
			b.WriteString("\n")
		}
		for _, row := range sec.Rows {
			b.WriteString(m.viewRow(sec.Type, row, idx == m.cursor))
			b.WriteString("\n")
			idx++
		}
	}

	list := b.String()
	if m.showDetail {
		if row, ok := m.selected(); ok {
			list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", viewAnalysis(service.Analyze(row.Habit, m.day)))
		}
	}
	return docStyle.Render(list)
}

func (m Model) viewRow(typ models.HabitType, row service.HabitRow, selected bool) string {
	done := row.CompletedOnDay
	if typ == models.HabitWeekly && !row.Due {
		done = row.CompletedInWeek
	}
	mark := "○"
	if done {
		mark = doneStyle.Render("✓")
	}

	line := row.Habit.Name
	if typ == models.HabitWeekly {
		line += mutedStyle.Render(fmt.Sprintf("  %s  %d/%d", row.Habit.Frequency, row.Week.Completed, row.Week.Total))
		if !row.Due {
			line += mutedStyle.Render("  not due")
		}
	}

	cursor := "  "
	if selected {
		cursor = selectedStyle.Render("> ")
		line = selectedStyle.Render(row.Habit.Name) + strings.TrimPrefix(line, row.Habit.Name)
	}
	return cursor + mark + " " + line
}

func viewAnalysis(a service.Analysis) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(a.Habit.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Type       %s\n", a.Habit.Type.Title()))
	if a.Habit.Type == models.HabitWeekly {
		b.WriteString(fmt.Sprintf("Days       %s\n", a.Habit.Frequency))
	}
	b.WriteString(fmt.Sprintf("Due        %s\n", yesNo(a.Due)))
	b.WriteString(fmt.Sprintf("Done       %s\n", yesNo(a.CompletedOnDay)))
	b.WriteString(fmt.Sprintf("This week  %d/%d\n", a.Week.Completed, a.Week.Total))
	if a.Month != nil {
		b.WriteString(fmt.Sprintf("This month %d/%d expected\n", a.Month.Completed, a.Month.Expected))
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Since %s", a.Habit.CreatedAt.Format(constants.DateFormat))))
	return paneStyle.Render(b.String())
}

func yesNo(v bool) string {
	if v {
		return doneStyle.Render("yes")
	}
	return "no"
}

func (m Model) viewTrend() string {
	if len(m.snapshot) == 0 {
		return docStyle.Render(mutedStyle.Render("Add a habit to start tracking your trend."))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(fmt.Sprintf("Last %d days", len(m.trend))),
		"",
		trend.Render(m.trend, trendRows),
	))
}

func (m Model) viewTips() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Building better habits"))
	b.WriteString("\n\n")
	for i, tip := range service.HabitTips {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("%d. %s", i+1, tip.Title)))
		b.WriteString("\n   ")
		b.WriteString(tip.Description)
		b.WriteString("\n\n")
	}
	return docStyle.Render(b.String())
}

func (m Model) viewConfirm(question, detail string) string {
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(question),
			mutedStyle.Render(detail),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
