package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
)

const todoColumns = "id, owner_id, text, completed, due_date, subtasks, created_at"

func scanTodo(row rowScanner) (models.Todo, error) {
	var t models.Todo
	var dueDate sql.NullString
	var subtasks, createdAt string

	if err := row.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &dueDate, &subtasks, &createdAt); err != nil {
		return models.Todo{}, err
	}

	var err error
	if dueDate.Valid && dueDate.String != "" {
		d, err := calendar.ParseDay(dueDate.String)
		if err != nil {
			return models.Todo{}, fmt.Errorf("todo %s: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	if t.Subtasks, err = storage.DecodeSubtasks(subtasks); err != nil {
		return models.Todo{}, fmt.Errorf("todo %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return models.Todo{}, fmt.Errorf("todo %s: %w", t.ID, err)
	}
	return t, nil
}

func dueDateArg(d *calendar.Day) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Key(), Valid: true}
}

func (s *Store) AddTodo(ctx context.Context, t models.Todo) error {
	_, err := s.exec(ctx, "add todo", `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Text, t.Completed, dueDateArg(t.DueDate),
		storage.EncodeSubtasks(t.Subtasks), storage.FormatTime(t.CreatedAt))
	return err
}

func (s *Store) GetTodo(ctx context.Context, ownerID, id string) (models.Todo, error) {
	row, err := s.queryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return models.Todo{}, err
	}
	t, err := scanTodo(row)
	if err != nil {
		return models.Todo{}, scanErr("get todo", "todo", id, err)
	}
	return t, nil
}

func (s *Store) GetAllTodos(ctx context.Context, ownerID string) ([]models.Todo, error) {
	rows, err := s.query(ctx, "list todos", `
		SELECT `+todoColumns+`
		FROM todos WHERE owner_id = ?
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, scanErr("list todos", "todo", "", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, scanErr("list todos", "todo", "", err)
	}
	return todos, nil
}

func (s *Store) UpdateTodo(ctx context.Context, t models.Todo) error {
	return s.execOne(ctx, "update todo", "todo", t.ID, `
		UPDATE todos SET text = ?, completed = ?, due_date = ?, subtasks = ?
		WHERE id = ? AND owner_id = ?`,
		t.Text, t.Completed, dueDateArg(t.DueDate), storage.EncodeSubtasks(t.Subtasks),
		t.ID, t.OwnerID)
}

func (s *Store) DeleteTodo(ctx context.Context, ownerID, id string) error {
	return s.execOne(ctx, "delete todo", "todo", id,
		`DELETE FROM todos WHERE id = ? AND owner_id = ?`, id, ownerID)
}
