package storage

import (
	"context"

	"github.com/julianstephens/orbitflow/internal/models"
)

// Provider is the persistence boundary. Every record method is scoped to a
// single owner: rows that belong to somebody else are reported as
// errors.ErrNotFound, never returned.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Ping(ctx context.Context) error

	// Owners
	AddOwner(ctx context.Context, owner models.Owner) error
	GetOwner(ctx context.Context, id string) (models.Owner, error)
	GetOwnerByEmail(ctx context.Context, email string) (models.Owner, error)

	// Habits
	AddHabit(ctx context.Context, habit models.Habit) error
	GetHabit(ctx context.Context, ownerID, id string) (models.Habit, error)
	GetAllHabits(ctx context.Context, ownerID string) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, habit models.Habit) error
	// ModifyCompletions runs mutate against the latest stored completions
	// and saves the result without losing a concurrent change.
	ModifyCompletions(ctx context.Context, ownerID, id string, mutate func(models.Completions)) (models.Habit, error)
	DeleteHabit(ctx context.Context, ownerID, id string) error

	// Todos
	AddTodo(ctx context.Context, todo models.Todo) error
	GetTodo(ctx context.Context, ownerID, id string) (models.Todo, error)
	GetAllTodos(ctx context.Context, ownerID string) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, todo models.Todo) error
	DeleteTodo(ctx context.Context, ownerID, id string) error

	// Bookmarks
	AddBookmark(ctx context.Context, bookmark models.Bookmark) error
	GetAllBookmarks(ctx context.Context, ownerID string) ([]models.Bookmark, error)
	// SearchBookmarks returns bookmarks whose lower-cased title starts with
	// prefix, newest first.
	SearchBookmarks(ctx context.Context, ownerID, prefix string) ([]models.Bookmark, error)
	DeleteBookmark(ctx context.Context, ownerID, id string) error

	// Utils
	GetConfigPath() string
	Dialect() string
}
