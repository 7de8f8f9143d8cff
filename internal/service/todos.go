package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
	"github.com/julianstephens/orbitflow/internal/validation"
)

type Todos struct {
	store     storage.Provider
	validator *validation.Validator
	now       func() time.Time
}

func NewTodos(store storage.Provider) *Todos {
	return &Todos{store: store, validator: validation.New(), now: time.Now}
}

// List returns the owner's todos, oldest first.
func (s *Todos) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	todos, err := s.store.GetAllTodos(ctx, ownerID)
	if err != nil {
		return nil, errors.Upstream("load todos", err)
	}
	return todos, nil
}

// Add creates an open todo. due may be nil.
func (s *Todos) Add(ctx context.Context, ownerID, text string, due *calendar.Day) (models.Todo, error) {
	t, err := s.validator.Todo(models.Todo{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Text:      text,
		DueDate:   due,
		Subtasks:  []models.Subtask{},
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return models.Todo{}, err
	}
	if err := s.store.AddTodo(ctx, t); err != nil {
		return models.Todo{}, errors.Upstream("add todo", err)
	}
	return t, nil
}

func (s *Todos) Toggle(ctx context.Context, ownerID, id string) (models.Todo, error) {
	return s.modify(ctx, ownerID, id, "toggle todo", func(t *models.Todo) error {
		t.Completed = !t.Completed
		return nil
	})
}

func (s *Todos) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTodo(ctx, ownerID, id); err != nil {
		return errors.Upstream("delete todo", err)
	}
	return nil
}

func (s *Todos) AddSubtask(ctx context.Context, ownerID, todoID, text string) (models.Todo, error) {
	text, err := s.validator.Subtask(text)
	if err != nil {
		return models.Todo{}, err
	}
	return s.modify(ctx, ownerID, todoID, "add subtask", func(t *models.Todo) error {
		t.Subtasks = append(t.Subtasks, models.Subtask{ID: uuid.New().String(), Text: text})
		// A new open subtask reopens a finished todo.
		syncCompletion(t)
		return nil
	})
}

func (s *Todos) ToggleSubtask(ctx context.Context, ownerID, todoID, subtaskID string) (models.Todo, error) {
	return s.modify(ctx, ownerID, todoID, "toggle subtask", func(t *models.Todo) error {
		i := t.SubtaskIndex(subtaskID)
		if i < 0 {
			return errors.NotFoundf("subtask %s", subtaskID)
		}
		t.Subtasks[i].Completed = !t.Subtasks[i].Completed
		syncCompletion(t)
		return nil
	})
}

func (s *Todos) DeleteSubtask(ctx context.Context, ownerID, todoID, subtaskID string) (models.Todo, error) {
	return s.modify(ctx, ownerID, todoID, "delete subtask", func(t *models.Todo) error {
		i := t.SubtaskIndex(subtaskID)
		if i < 0 {
			return errors.NotFoundf("subtask %s", subtaskID)
		}
		t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
		if len(t.Subtasks) == 0 {
			// Completion may have come from the subtasks that are now gone.
			t.Completed = false
			return nil
		}
		syncCompletion(t)
		return nil
	})
}

// syncCompletion marks the todo done when every subtask is done and reopens
// it when any subtask is open. Todos without subtasks are left alone.
func syncCompletion(t *models.Todo) {
	done, total := t.Progress()
	if total == 0 {
		return
	}
	t.Completed = done == total
}

func (s *Todos) modify(ctx context.Context, ownerID, id, op string, fn func(*models.Todo) error) (models.Todo, error) {
	t, err := s.store.GetTodo(ctx, ownerID, id)
	if err != nil {
		return models.Todo{}, errors.Upstream("get todo", err)
	}
	if err := fn(&t); err != nil {
		return models.Todo{}, err
	}
	if err := s.store.UpdateTodo(ctx, t); err != nil {
		return models.Todo{}, errors.Upstream(op, err)
	}
	return t, nil
}

// TodoSummary is the overall completion of a todo list.
type TodoSummary struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	Overdue   int     `json:"overdue"`
}

// SummarizeTodos counts finished and overdue todos relative to today.
func SummarizeTodos(todos []models.Todo, today calendar.Day) TodoSummary {
	var sum TodoSummary
	sum.Total = len(todos)
	for i := range todos {
		if todos[i].Completed {
			sum.Completed++
		}
		if todos[i].Overdue(today) {
			sum.Overdue++
		}
	}
	if sum.Total > 0 {
		sum.Percent = 100 * float64(sum.Completed) / float64(sum.Total)
	}
	return sum
}
