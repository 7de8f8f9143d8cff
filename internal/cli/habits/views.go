package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/progress"
	"github.com/julianstephens/orbitflow/internal/tui/components/trend"
)

type HabitTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	dash, err := ctx.Habits.Dashboard(bg, owner, day)
	if err != nil {
		return err
	}

	fmt.Printf("Habits for %s (%s)\n\n", day, day.Weekday())
	for _, sec := range dash.Sections {
		fmt.Printf("%-8s %s %s\n", sec.Type.Title(), cli.Bar(sec.Progress, 20), cli.Percent(sec.Progress))
		if len(sec.Rows) == 0 {
			fmt.Println("  (none)")
		}
		for _, row := range sec.Rows {
			switch {
			case sec.Type == models.HabitWeekly && !row.Due:
				fmt.Printf("  %s %s  (not due, %d/%d this week)\n",
					cli.Check(row.CompletedInWeek), row.Habit.Name, row.Week.Completed, row.Week.Total)
			case sec.Type == models.HabitWeekly:
				fmt.Printf("  %s %s  (%s)\n", cli.Check(row.CompletedOnDay), row.Habit.Name, row.Habit.Frequency)
			default:
				fmt.Printf("  %s %s\n", cli.Check(row.CompletedOnDay), row.Habit.Name)
			}
		}
		fmt.Println()
	}
	fmt.Printf("Overall today %s\n", cli.Percent(dash.Summary.Overall))
	return nil
}

type HabitWeekCmd struct {
	Date string `help:"Any day in the week (default: today)." default:""`
}

func (c *HabitWeekCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	habits, err := ctx.Habits.Snapshot(bg, owner)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	week := day.Week()
	fmt.Printf("Week of %s\n\n", week[0])
	header := make([]string, len(week))
	for i, d := range week {
		header[i] = d.Weekday().String()[:2]
	}
	fmt.Printf("%-24s %s\n", "", strings.Join(header, " "))

	for _, h := range habits {
		cells := make([]string, len(week))
		for i, d := range week {
			cells[i] = " " + cli.Check(h.Completions.Has(d))
		}
		count := progress.WeeklyCompletionCount(h, day)
		fmt.Printf("%-24s %s  %d/%d\n", truncate(h.Name, 24), strings.Join(cells, " "), count.Completed, count.Total)
	}
	return nil
}

type HabitMonthCmd struct {
	Date string `help:"Any day in the month (default: today)." default:""`
}

func (c *HabitMonthCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	habits, err := ctx.Habits.Snapshot(bg, owner)
	if err != nil {
		return err
	}

	weekly := progress.Group(habits, models.HabitWeekly)
	if len(weekly) == 0 {
		fmt.Println("No weekly habits found.")
		return nil
	}

	fmt.Printf("%s %d\n\n", day.Time().Month(), day.Time().Year())
	for _, h := range weekly {
		mc := progress.MonthlyExpectedVsCompleted(h, day)
		pct := 0.0
		if mc.Expected > 0 {
			pct = float64(mc.Completed) / float64(mc.Expected) * 100
		}
		fmt.Printf("%-24s %s %d/%d  (%s)\n", truncate(h.Name, 24), cli.Bar(pct, 16), mc.Completed, mc.Expected, h.Frequency)
	}
	return nil
}

type HabitTrendCmd struct {
	Days   int    `help:"Window size in days (1-366)." default:"30"`
	End    string `help:"Last day of the window (default: today)." default:""`
	Height int    `help:"Chart height in rows." default:"6"`
}

func (c *HabitTrendCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	end, err := ctx.Day(c.End)
	if err != nil {
		return err
	}
	points, err := ctx.Habits.Trend(bg, owner, c.Days, end)
	if err != nil {
		return err
	}
	fmt.Println(trend.Render(points, c.Height))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
