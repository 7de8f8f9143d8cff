package habits

import (
	"context"
	"testing"

	"github.com/julianstephens/orbitflow/internal/backup"
	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/cli/clitest"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
)

func addHabit(t *testing.T, ctx *cli.Context, cmd HabitAddCmd) models.Habit {
	t.Helper()
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("HabitAddCmd.Run(%q) failed: %v", cmd.Name, err)
	}
	habits, err := ctx.Habits.Snapshot(context.Background(), clitest.Owner(t, ctx))
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	for _, h := range habits {
		if h.Name == cmd.Name {
			return h
		}
	}
	t.Fatalf("habit %q not stored", cmd.Name)
	return models.Habit{}
}

func TestHabitAdd(t *testing.T) {
	ctx := clitest.New(t)

	h := addHabit(t, ctx, HabitAddCmd{Name: "Gym", Type: "weekly", Days: []string{"mon", "wed"}})
	if h.Type != models.HabitWeekly || h.Frequency.Len() != 2 {
		t.Errorf("unexpected habit: %+v", h)
	}

	tests := []struct {
		name string
		cmd  HabitAddCmd
	}{
		{"weekly without days", HabitAddCmd{Name: "Swim", Type: "weekly"}},
		{"bad weekday", HabitAddCmd{Name: "Swim", Type: "weekly", Days: []string{"funday"}}},
		{"empty name", HabitAddCmd{Name: "  ", Type: "daily"}},
		{"bad type", HabitAddCmd{Name: "Swim", Type: "hourly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cmd.Run(ctx); !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestHabitToggleByShortID(t *testing.T) {
	ctx := clitest.New(t)
	h := addHabit(t, ctx, HabitAddCmd{Name: "Read", Type: "daily"})

	cmd := HabitToggleCmd{ID: cli.ShortID(h.ID), Date: "2024-03-04"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	got, err := ctx.Habits.Get(context.Background(), clitest.Owner(t, ctx), h.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Completions.Has(calendar.Date(2024, 3, 4)) {
		t.Error("expected completion on 2024-03-04")
	}

	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	got, _ = ctx.Habits.Get(context.Background(), clitest.Owner(t, ctx), h.ID)
	if got.Completions.Has(calendar.Date(2024, 3, 4)) {
		t.Error("expected second toggle to remove the completion")
	}

	bad := HabitToggleCmd{ID: h.ID, Date: "yesterday"}
	if err := bad.Run(ctx); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a bad date, got %v", err)
	}
}

func TestHabitEdit(t *testing.T) {
	ctx := clitest.New(t)
	h := addHabit(t, ctx, HabitAddCmd{Name: "Gym", Type: "weekly", Days: []string{"mon"}})

	if err := (&HabitEditCmd{ID: h.ID}).Run(ctx); err == nil {
		t.Error("expected an error when nothing changes")
	}

	edit := HabitEditCmd{ID: h.ID, Name: "Gym session", Days: []string{"tue", "thu", "sat"}}
	if err := edit.Run(ctx); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	got, _ := ctx.Habits.Get(context.Background(), clitest.Owner(t, ctx), h.ID)
	if got.Name != "Gym session" || got.Frequency.Len() != 3 {
		t.Errorf("unexpected habit after edit: %+v", got)
	}

	toDaily := HabitEditCmd{ID: h.ID, Type: "daily"}
	if err := toDaily.Run(ctx); err != nil {
		t.Fatalf("type change failed: %v", err)
	}
	got, _ = ctx.Habits.Get(context.Background(), clitest.Owner(t, ctx), h.ID)
	if got.Type != models.HabitDaily || !got.Frequency.IsEmpty() {
		t.Errorf("expected daily habit without weekdays, got %+v", got)
	}
}

func TestHabitDeleteAndClear(t *testing.T) {
	ctx := clitest.New(t)
	owner := clitest.Owner(t, ctx)
	a := addHabit(t, ctx, HabitAddCmd{Name: "Read", Type: "daily"})
	addHabit(t, ctx, HabitAddCmd{Name: "Stretch", Type: "morning"})
	addHabit(t, ctx, HabitAddCmd{Name: "Gym", Type: "weekly", Days: []string{"fri"}})

	if err := (&HabitDeleteCmd{ID: a.ID}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := ctx.Habits.Get(context.Background(), owner, a.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := (&HabitClearCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	left, err := ctx.Habits.Snapshot(context.Background(), owner)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected no habits after clear, got %d", len(left))
	}

	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		t.Fatalf("List backups failed: %v", err)
	}
	if len(backups) == 0 {
		t.Error("expected clear to take an automatic backup")
	}
}

func TestViewsRun(t *testing.T) {
	ctx := clitest.New(t)
	addHabit(t, ctx, HabitAddCmd{Name: "Read", Type: "daily"})
	addHabit(t, ctx, HabitAddCmd{Name: "Gym", Type: "weekly", Days: []string{"mon", "thu"}})

	cmds := []interface{ Run(*cli.Context) error }{
		&HabitListCmd{},
		&HabitListCmd{Type: "weekly"},
		&HabitTodayCmd{Date: "2024-03-04"},
		&HabitWeekCmd{Date: "2024-03-04"},
		&HabitMonthCmd{Date: "2024-03-04"},
		&HabitTrendCmd{Days: 14, End: "2024-03-04", Height: 4},
		&HabitTipsCmd{},
	}
	for _, c := range cmds {
		if err := c.Run(ctx); err != nil {
			t.Errorf("%T.Run failed: %v", c, err)
		}
	}

	if err := (&HabitTrendCmd{Days: -1, End: "2024-03-04"}).Run(ctx); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a negative window, got %v", err)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	ctx := clitest.NewAnonymous(t)
	if err := (&HabitListCmd{}).Run(ctx); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a very long habit name", 8); got != "a very …" {
		t.Errorf("truncate() = %q", got)
	}
}
