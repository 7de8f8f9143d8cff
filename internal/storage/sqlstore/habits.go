package sqlstore

import (
	"context"
	"fmt"

	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
)

const habitColumns = "id, owner_id, name, type, frequency, completions, created_at"

// completionAttempts bounds the compare-and-swap loop in ModifyCompletions.
const completionAttempts = 8

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var typ, frequency, completions, createdAt string

	if err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &typ, &frequency, &completions, &createdAt); err != nil {
		return models.Habit{}, err
	}

	h.Type = models.HabitType(typ)
	var err error
	if h.Frequency, err = storage.DecodeFrequency(frequency); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.Completions, err = storage.DecodeCompletions(completions); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	if h.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	return h, nil
}

func (s *Store) AddHabit(ctx context.Context, h models.Habit) error {
	_, err := s.exec(ctx, "add habit", `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.OwnerID, h.Name, string(h.Type),
		storage.EncodeFrequency(h.Frequency),
		storage.EncodeCompletions(h.Completions),
		storage.FormatTime(h.CreatedAt))
	return err
}

func (s *Store) GetHabit(ctx context.Context, ownerID, id string) (models.Habit, error) {
	row, err := s.queryRow(ctx, `
		SELECT `+habitColumns+`
		FROM habits WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return models.Habit{}, err
	}
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, scanErr("get habit", "habit", id, err)
	}
	return h, nil
}

func (s *Store) GetAllHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	rows, err := s.query(ctx, "list habits", `
		SELECT `+habitColumns+`
		FROM habits WHERE owner_id = ?
		ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, scanErr("list habits", "habit", "", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, scanErr("list habits", "habit", "", err)
	}
	return habits, nil
}

// UpdateHabit rewrites name, type and frequency. Completions only change
// through ModifyCompletions and created_at never changes.
func (s *Store) UpdateHabit(ctx context.Context, h models.Habit) error {
	return s.execOne(ctx, "update habit", "habit", h.ID, `
		UPDATE habits SET name = ?, type = ?, frequency = ?
		WHERE id = ? AND owner_id = ?`,
		h.Name, string(h.Type),
		storage.EncodeFrequency(h.Frequency),
		h.ID, h.OwnerID)
}

// ModifyCompletions applies mutate to the stored completion map and writes
// it back only if the column still holds what was read. A concurrent writer
// makes the update miss, and the read and mutate run again on fresh data.
func (s *Store) ModifyCompletions(ctx context.Context, ownerID, id string, mutate func(models.Completions)) (models.Habit, error) {
	for attempt := 0; attempt < completionAttempts; attempt++ {
		row, err := s.queryRow(ctx, `
			SELECT completions FROM habits WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return models.Habit{}, err
		}
		var raw string
		if err := row.Scan(&raw); err != nil {
			return models.Habit{}, scanErr("get completions", "habit", id, err)
		}
		completions, err := storage.DecodeCompletions(raw)
		if err != nil {
			return models.Habit{}, fmt.Errorf("habit %s: %w", id, err)
		}

		mutate(completions)

		res, err := s.exec(ctx, "update completions", `
			UPDATE habits SET completions = ?
			WHERE id = ? AND owner_id = ? AND completions = ?`,
			storage.EncodeCompletions(completions), id, ownerID, raw)
		if err != nil {
			return models.Habit{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return models.Habit{}, errors.Upstream("update completions", err)
		}
		if n == 1 {
			return s.GetHabit(ctx, ownerID, id)
		}
	}
	return models.Habit{}, fmt.Errorf("%w: habit %s kept changing during update", errors.ErrConflict, id)
}

func (s *Store) DeleteHabit(ctx context.Context, ownerID, id string) error {
	return s.execOne(ctx, "delete habit", "habit", id,
		`DELETE FROM habits WHERE id = ? AND owner_id = ?`, id, ownerID)
}
