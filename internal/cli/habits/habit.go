package habits

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/service"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit for a day."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
	Clear  HabitClearCmd  `cmd:"" help:"Delete every habit."`
	Today  HabitTodayCmd  `cmd:"" help:"Show the habit dashboard for a day."`
	Week   HabitWeekCmd   `cmd:"" help:"Show this week's completions per habit."`
	Month  HabitMonthCmd  `cmd:"" help:"Show monthly expected vs completed for weekly habits."`
	Trend  HabitTrendCmd  `cmd:"" help:"Show the daily progress trend."`
	Tips   HabitTipsCmd   `cmd:"" help:"Show habit-building tips."`
}

// resolveHabit finds a habit by full id or by the short id list prints.
func resolveHabit(bg context.Context, ctx *cli.Context, owner, idPrefix string) (models.Habit, error) {
	habits, err := ctx.Habits.Snapshot(bg, owner)
	if err != nil {
		return models.Habit{}, err
	}
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	id, err := cli.MatchID(ids, idPrefix)
	if err != nil {
		return models.Habit{}, err
	}
	return ctx.Habits.Get(bg, owner, id)
}

type HabitAddCmd struct {
	Name string   `arg:"" help:"Habit name."`
	Type string   `help:"Habit type: daily, morning or weekly." default:"daily" enum:"daily,morning,weekly"`
	Days []string `help:"Weekdays for weekly habits (e.g. mon,wed,fri)." sep:","`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}

	typ, err := models.ParseHabitType(c.Type)
	if err != nil {
		return err
	}
	freq, err := models.ParseWeekdaySet(c.Days)
	if err != nil {
		return err
	}

	h, err := ctx.Habits.Add(bg, owner, service.HabitInput{Name: c.Name, Type: typ, Frequency: freq})
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s\n", cli.FormatHabit(h))
	return nil
}

type HabitListCmd struct {
	Type string `help:"Only show habits of this type." enum:",daily,morning,weekly" default:""`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	habits, err := ctx.Habits.Snapshot(bg, owner)
	if err != nil {
		return err
	}

	shown := 0
	for _, h := range habits {
		if c.Type != "" && string(h.Type) != c.Type {
			continue
		}
		fmt.Println(cli.FormatHabit(h))
		shown++
	}
	if shown == 0 {
		fmt.Println("No habits found.")
	}
	return nil
}

type HabitEditCmd struct {
	ID   string   `arg:"" help:"Habit id (or unique prefix)."`
	Name string   `help:"New name."`
	Type string   `help:"New type: daily, morning or weekly." enum:",daily,morning,weekly" default:""`
	Days []string `help:"New weekdays for weekly habits." sep:","`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	h, err := resolveHabit(bg, ctx, owner, c.ID)
	if err != nil {
		return err
	}

	var patch service.HabitPatch
	if c.Name != "" {
		patch.Name = &c.Name
	}
	if c.Type != "" {
		typ, err := models.ParseHabitType(c.Type)
		if err != nil {
			return err
		}
		patch.Type = &typ
	}
	if len(c.Days) > 0 {
		freq, err := models.ParseWeekdaySet(c.Days)
		if err != nil {
			return err
		}
		patch.Frequency = &freq
	}
	if patch.Name == nil && patch.Type == nil && patch.Frequency == nil {
		return fmt.Errorf("nothing to change: pass --name, --type or --days")
	}

	updated, err := ctx.Habits.Update(bg, owner, h.ID, patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s\n", cli.FormatHabit(updated))
	return nil
}

type HabitToggleCmd struct {
	ID   string `arg:"" help:"Habit id (or unique prefix)."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	h, err := resolveHabit(bg, ctx, owner, c.ID)
	if err != nil {
		return err
	}

	_, done, err := ctx.Habits.Toggle(bg, owner, h.ID, day)
	if err != nil {
		return err
	}
	if done {
		fmt.Printf("Marked habit %q for %s\n", h.Name, day)
	} else {
		fmt.Printf("Unmarked habit %q for %s\n", h.Name, day)
	}
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit id (or unique prefix)."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	h, err := resolveHabit(bg, ctx, owner, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Habits.Delete(bg, owner, h.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitClearCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *HabitClearCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	habits, err := ctx.Habits.Snapshot(bg, owner)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits to delete.")
		return nil
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete all %d habits?", len(habits))).
			Description("Every habit and its completion history will be removed.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	n, err := ctx.Habits.DeleteAll(bg, owner)
	if err != nil {
		return fmt.Errorf("deleted %d of %d habits: %w", n, len(habits), err)
	}
	fmt.Printf("Deleted %d habits.\n", n)
	return nil
}

type HabitTipsCmd struct{}

func (c *HabitTipsCmd) Run(ctx *cli.Context) error {
	for i, tip := range service.HabitTips {
		fmt.Printf("%d. %s\n   %s\n", i+1, tip.Title, tip.Description)
	}
	return nil
}
