package todos

import (
	"context"
	"fmt"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/service"
)

type TodoCmd struct {
	Add     TodoAddCmd    `cmd:"" help:"Add a todo."`
	List    TodoListCmd   `cmd:"" help:"List todos."`
	Toggle  TodoToggleCmd `cmd:"" help:"Mark a todo done or open."`
	Delete  TodoDeleteCmd `cmd:"" help:"Delete a todo."`
	Subtask SubtaskCmd    `cmd:"" help:"Manage subtasks."`
}

type SubtaskCmd struct {
	Add    SubtaskAddCmd    `cmd:"" help:"Add a subtask to a todo."`
	Toggle SubtaskToggleCmd `cmd:"" help:"Mark a subtask done or open."`
	Delete SubtaskDeleteCmd `cmd:"" help:"Delete a subtask."`
}

func resolveTodo(bg context.Context, ctx *cli.Context, owner, idPrefix string) (models.Todo, error) {
	todos, err := ctx.Todos.List(bg, owner)
	if err != nil {
		return models.Todo{}, err
	}
	ids := make([]string, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	id, err := cli.MatchID(ids, idPrefix)
	if err != nil {
		return models.Todo{}, err
	}
	for _, t := range todos {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Todo{ID: id}, nil
}

func resolveSubtask(t models.Todo, idPrefix string) (string, error) {
	ids := make([]string, len(t.Subtasks))
	for i, st := range t.Subtasks {
		ids[i] = st.ID
	}
	return cli.MatchID(ids, idPrefix)
}

func printTodo(t models.Todo, today calendar.Day) {
	line := fmt.Sprintf("%s %s  %s", cli.Check(t.Completed), cli.ShortID(t.ID), t.Text)
	if t.DueDate != nil {
		line += fmt.Sprintf("  (due %s)", t.DueDate)
		if t.Overdue(today) {
			line += " OVERDUE"
		}
	}
	if done, total := t.Progress(); total > 0 {
		line += fmt.Sprintf("  [%d/%d]", done, total)
	}
	fmt.Println(line)
	for _, st := range t.Subtasks {
		fmt.Printf("    %s %s  %s\n", cli.Check(st.Completed), cli.ShortID(st.ID), st.Text)
	}
}

type TodoAddCmd struct {
	Text string `arg:"" help:"Todo text."`
	Due  string `help:"Due date in YYYY-MM-DD format."`
}

func (c *TodoAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	var due *calendar.Day
	if c.Due != "" {
		d, err := calendar.ParseDay(c.Due)
		if err != nil {
			return err
		}
		due = &d
	}
	t, err := ctx.Todos.Add(bg, owner, c.Text, due)
	if err != nil {
		return err
	}
	fmt.Printf("Added todo %s: %s\n", cli.ShortID(t.ID), t.Text)
	return nil
}

type TodoListCmd struct {
	Open bool `help:"Only show open todos."`
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	today, err := ctx.Day("")
	if err != nil {
		return err
	}
	todos, err := ctx.Todos.List(bg, owner)
	if err != nil {
		return err
	}
	if len(todos) == 0 {
		fmt.Println("No todos found.")
		return nil
	}

	for _, t := range todos {
		if c.Open && t.Completed {
			continue
		}
		printTodo(t, today)
	}
	sum := service.SummarizeTodos(todos, today)
	fmt.Printf("\n%d/%d done %s %s", sum.Completed, sum.Total, cli.Bar(sum.Percent, 20), cli.Percent(sum.Percent))
	if sum.Overdue > 0 {
		fmt.Printf(", %d overdue", sum.Overdue)
	}
	fmt.Println()
	return nil
}

type TodoToggleCmd struct {
	ID string `arg:"" help:"Todo id (or unique prefix)."`
}

func (c *TodoToggleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	t, err := resolveTodo(bg, ctx, owner, c.ID)
	if err != nil {
		return err
	}
	t, err = ctx.Todos.Toggle(bg, owner, t.ID)
	if err != nil {
		return err
	}
	if t.Completed {
		fmt.Printf("Completed: %s\n", t.Text)
	} else {
		fmt.Printf("Reopened: %s\n", t.Text)
	}
	return nil
}

type TodoDeleteCmd struct {
	ID string `arg:"" help:"Todo id (or unique prefix)."`
}

func (c *TodoDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	t, err := resolveTodo(bg, ctx, owner, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Todos.Delete(bg, owner, t.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted todo: %s\n", t.Text)
	return nil
}

type SubtaskAddCmd struct {
	TodoID string `arg:"" help:"Todo id (or unique prefix)."`
	Text   string `arg:"" help:"Subtask text."`
}

func (c *SubtaskAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	t, err := resolveTodo(bg, ctx, owner, c.TodoID)
	if err != nil {
		return err
	}
	t, err = ctx.Todos.AddSubtask(bg, owner, t.ID, c.Text)
	if err != nil {
		return err
	}
	st := t.Subtasks[len(t.Subtasks)-1]
	fmt.Printf("Added subtask %s to %q\n", cli.ShortID(st.ID), t.Text)
	return nil
}

type SubtaskToggleCmd struct {
	TodoID    string `arg:"" help:"Todo id (or unique prefix)."`
	SubtaskID string `arg:"" help:"Subtask id (or unique prefix)."`
}

func (c *SubtaskToggleCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	t, err := resolveTodo(bg, ctx, owner, c.TodoID)
	if err != nil {
		return err
	}
	sid, err := resolveSubtask(t, c.SubtaskID)
	if err != nil {
		return err
	}
	t, err = ctx.Todos.ToggleSubtask(bg, owner, t.ID, sid)
	if err != nil {
		return err
	}
	done, total := t.Progress()
	fmt.Printf("%q: %d/%d subtasks done\n", t.Text, done, total)
	if t.Completed {
		fmt.Println("All subtasks done, todo completed.")
	}
	return nil
}

type SubtaskDeleteCmd struct {
	TodoID    string `arg:"" help:"Todo id (or unique prefix)."`
	SubtaskID string `arg:"" help:"Subtask id (or unique prefix)."`
}

func (c *SubtaskDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	owner, err := ctx.Owner(bg)
	if err != nil {
		return err
	}
	t, err := resolveTodo(bg, ctx, owner, c.TodoID)
	if err != nil {
		return err
	}
	sid, err := resolveSubtask(t, c.SubtaskID)
	if err != nil {
		return err
	}
	if _, err := ctx.Todos.DeleteSubtask(bg, owner, t.ID, sid); err != nil {
		return err
	}
	fmt.Println("Deleted subtask.")
	return nil
}
