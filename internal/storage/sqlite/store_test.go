package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addOwner(t *testing.T, s *Store, email string) models.Owner {
	t.Helper()
	o := models.Owner{ID: uuid.New().String(), Email: email, PasswordHash: "hash", CreatedAt: time.Now()}
	if err := s.AddOwner(context.Background(), o); err != nil {
		t.Fatalf("AddOwner failed: %v", err)
	}
	return o
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load() on a missing database should fail")
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer second.Close()

	current, latest, err := second.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("schema version = %d, latest = %d", current, latest)
	}
	if err := second.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOwnerEmailIsUnique(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	o := addOwner(t, s, "Me@Example.com")

	got, err := s.GetOwnerByEmail(ctx, "me@example.com")
	if err != nil {
		t.Fatalf("GetOwnerByEmail failed: %v", err)
	}
	if got.ID != o.ID || got.Email != "me@example.com" {
		t.Errorf("GetOwnerByEmail() = %+v", got)
	}

	dup := models.Owner{ID: uuid.New().String(), Email: "ME@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	if err := s.AddOwner(ctx, dup); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("duplicate email error = %v, want ErrConflict", err)
	}

	if _, err := s.GetOwner(ctx, "nobody"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetOwner(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHabitCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	owner := addOwner(t, s, "a@example.com")

	h := models.Habit{
		ID:          uuid.New().String(),
		OwnerID:     owner.ID,
		Name:        "Stretch",
		Type:        models.HabitWeekly,
		Frequency:   models.NewWeekdaySet(time.Monday, time.Thursday),
		CreatedAt:   time.Now(),
		Completions: models.Completions{"2024-03-11": true},
	}
	if err := s.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, err := s.GetHabit(ctx, owner.ID, h.ID)
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if got.Name != "Stretch" || got.Type != models.HabitWeekly || got.Frequency != h.Frequency {
		t.Errorf("GetHabit() = %+v", got)
	}
	if !got.Completions.Has(calendar.Date(2024, 3, 11)) || len(got.Completions) != 1 {
		t.Errorf("completions = %v", got.Completions)
	}
	if !got.CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, h.CreatedAt)
	}

	got.Completions.Toggle(calendar.Date(2024, 3, 14))
	got.Name = "Stretch daily"
	if err := s.UpdateHabit(ctx, got); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	updated, _ := s.GetHabit(ctx, owner.ID, h.ID)
	if updated.Name != "Stretch daily" || len(updated.Completions) != 1 {
		t.Errorf("after update = %+v, want renamed with completions untouched", updated)
	}

	toggled, err := s.ModifyCompletions(ctx, owner.ID, h.ID, func(c models.Completions) {
		c.Toggle(calendar.Date(2024, 3, 14))
	})
	if err != nil {
		t.Fatalf("ModifyCompletions failed: %v", err)
	}
	if len(toggled.Completions) != 2 || toggled.Name != "Stretch daily" {
		t.Errorf("after ModifyCompletions = %+v", toggled)
	}

	if err := s.DeleteHabit(ctx, owner.ID, h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := s.GetHabit(ctx, owner.ID, h.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetHabit after delete error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteHabit(ctx, owner.ID, h.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second DeleteHabit error = %v, want ErrNotFound", err)
	}
}

func TestModifyCompletionsKeepsConcurrentWrite(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	owner := addOwner(t, s, "race@example.com")

	h := models.Habit{ID: uuid.New().String(), OwnerID: owner.ID, Name: "Read", Type: models.HabitDaily, CreatedAt: time.Now()}
	if err := s.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	monday := calendar.Date(2024, 3, 4)
	tuesday := calendar.Date(2024, 3, 5)
	calls := 0
	got, err := s.ModifyCompletions(ctx, owner.ID, h.ID, func(c models.Completions) {
		calls++
		if calls == 1 {
			// Another writer lands between this read and the write below.
			if _, err := s.ModifyCompletions(ctx, owner.ID, h.ID, func(c models.Completions) {
				c.Toggle(tuesday)
			}); err != nil {
				t.Errorf("inner ModifyCompletions failed: %v", err)
			}
		}
		c.Toggle(monday)
	})
	if err != nil {
		t.Fatalf("ModifyCompletions failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("mutate ran %d times, want 2 (one retry)", calls)
	}
	if !got.Completions.Has(monday) || !got.Completions.Has(tuesday) || len(got.Completions) != 2 {
		t.Errorf("completions = %v, want both days", got.Completions)
	}

	stored, _ := s.GetHabit(ctx, owner.ID, h.ID)
	if len(stored.Completions) != 2 {
		t.Errorf("stored completions = %v, want both days", stored.Completions)
	}
}

func TestModifyCompletionsMissingHabit(t *testing.T) {
	s := setupTestStore(t)
	owner := addOwner(t, s, "missing@example.com")

	_, err := s.ModifyCompletions(context.Background(), owner.ID, "nope", func(models.Completions) {
		t.Error("mutate called for a missing habit")
	})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ModifyCompletions(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHabitsAreOwnerScoped(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	alice := addOwner(t, s, "alice@example.com")
	bob := addOwner(t, s, "bob@example.com")

	h := models.Habit{ID: uuid.New().String(), OwnerID: alice.ID, Name: "Read", Type: models.HabitDaily, CreatedAt: time.Now()}
	if err := s.AddHabit(ctx, h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	if _, err := s.GetHabit(ctx, bob.ID, h.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetHabit as other owner error = %v, want ErrNotFound", err)
	}
	list, err := s.GetAllHabits(ctx, bob.ID)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other owner sees %d habits", len(list))
	}

	stolen := h
	stolen.OwnerID = bob.ID
	stolen.Name = "Hijacked"
	if err := s.UpdateHabit(ctx, stolen); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateHabit as other owner error = %v, want ErrNotFound", err)
	}
	if _, err := s.ModifyCompletions(ctx, bob.ID, h.ID, func(c models.Completions) {
		c.Toggle(calendar.Date(2024, 3, 4))
	}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ModifyCompletions as other owner error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteHabit(ctx, bob.ID, h.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteHabit as other owner error = %v, want ErrNotFound", err)
	}

	mine, _ := s.GetHabit(ctx, alice.ID, h.ID)
	if mine.Name != "Read" {
		t.Errorf("habit was modified by another owner: %+v", mine)
	}
}

func TestGetAllHabitsOrderedByCreation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	owner := addOwner(t, s, "o@example.com")

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	names := []string{"first", "second", "third"}
	// Insert out of order
	for _, i := range []int{2, 0, 1} {
		h := models.Habit{
			ID:        uuid.New().String(),
			OwnerID:   owner.ID,
			Name:      names[i],
			Type:      models.HabitDaily,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.AddHabit(ctx, h); err != nil {
			t.Fatalf("AddHabit failed: %v", err)
		}
	}

	habits, err := s.GetAllHabits(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	for i, h := range habits {
		if h.Name != names[i] {
			t.Errorf("habit %d = %s, want %s", i, h.Name, names[i])
		}
	}
}

func TestLegacyFrequencyIsNormalizedOnRead(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	owner := addOwner(t, s, "legacy@example.com")

	_, err := s.DB.Exec(`INSERT INTO habits (id, owner_id, name, type, frequency, completions, created_at)
		VALUES ('h1', ?, 'Gym', 'weekly', '{"0":"Monday","1":"FRIDAY"}', '{"2024-03-11":true,"bogus":true,"2024-03-12":false}', ?)`,
		owner.ID, "2024-03-01T00:00:00.000000000Z")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	h, err := s.GetHabit(ctx, owner.ID, "h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if h.Frequency != models.NewWeekdaySet(time.Monday, time.Friday) {
		t.Errorf("frequency = %v, want monday,friday", h.Frequency)
	}
	if len(h.Completions) != 1 || !h.Completions["2024-03-11"] {
		t.Errorf("completions = %v, want only 2024-03-11", h.Completions)
	}
}

func TestTodoCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	owner := addOwner(t, s, "t@example.com")

	due := calendar.Date(2024, 6, 1)
	todo := models.Todo{
		ID:        uuid.New().String(),
		OwnerID:   owner.ID,
		Text:      "Plan trip",
		DueDate:   &due,
		Subtasks:  []models.Subtask{{ID: "s1", Text: "Book flights"}},
		CreatedAt: time.Now(),
	}
	if err := s.AddTodo(ctx, todo); err != nil {
		t.Fatalf("AddTodo failed: %v", err)
	}

	got, err := s.GetTodo(ctx, owner.ID, todo.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.DueDate == nil || got.DueDate.Key() != "2024-06-01" {
		t.Errorf("due date = %v", got.DueDate)
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].Text != "Book flights" {
		t.Errorf("subtasks = %+v", got.Subtasks)
	}

	got.Completed = true
	got.DueDate = nil
	got.Subtasks[0].Completed = true
	if err := s.UpdateTodo(ctx, got); err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}
	updated, _ := s.GetTodo(ctx, owner.ID, todo.ID)
	if !updated.Completed || updated.DueDate != nil || !updated.Subtasks[0].Completed {
		t.Errorf("after update = %+v", updated)
	}

	all, err := s.GetAllTodos(ctx, owner.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetAllTodos = %d, %v", len(all), err)
	}

	if err := s.DeleteTodo(ctx, owner.ID, todo.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if _, err := s.GetTodo(ctx, owner.ID, todo.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetTodo after delete error = %v", err)
	}
}

func TestBookmarkSearch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	owner := addOwner(t, s, "b@example.com")
	other := addOwner(t, s, "c@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	add := func(ownerID, title string, offset int) {
		b := models.Bookmark{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			Title:     title,
			URL:       "https://example.com/" + title,
			CreatedAt: base.Add(time.Duration(offset) * time.Hour),
		}
		if err := s.AddBookmark(ctx, b); err != nil {
			t.Fatalf("AddBookmark failed: %v", err)
		}
	}
	add(owner.ID, "Go Blog", 0)
	add(owner.ID, "golang weekly", 1)
	add(owner.ID, "Rust Book", 2)
	add(other.ID, "Go Tour", 3)

	all, err := s.GetAllBookmarks(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetAllBookmarks failed: %v", err)
	}
	if len(all) != 3 || all[0].Title != "Rust Book" {
		t.Errorf("GetAllBookmarks should be newest first, got %+v", all)
	}

	found, err := s.SearchBookmarks(ctx, owner.ID, "GO")
	if err != nil {
		t.Fatalf("SearchBookmarks failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("SearchBookmarks(GO) returned %d results, want 2", len(found))
	}
	if found[0].Title != "golang weekly" || found[1].Title != "Go Blog" {
		t.Errorf("unexpected search order: %s, %s", found[0].Title, found[1].Title)
	}

	none, _ := s.SearchBookmarks(ctx, owner.ID, "book")
	if len(none) != 0 {
		t.Errorf("search must match title prefix only, got %d", len(none))
	}

	if err := s.DeleteBookmark(ctx, other.ID, all[0].ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteBookmark as other owner error = %v", err)
	}
}
