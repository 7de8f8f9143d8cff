// Package service is the owner-scoped application layer shared by the CLI,
// the TUI and the HTTP API. It validates input, writes through the storage
// provider, and serves habit reads from a version-stamped snapshot cache.
package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/orbitflow/internal/cache"
	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/progress"
	"github.com/julianstephens/orbitflow/internal/storage"
	"github.com/julianstephens/orbitflow/internal/validation"
)

// DeleteConcurrency bounds the number of in-flight deletes in DeleteAll.
const DeleteConcurrency = constants.DeleteConcurrency

// HabitInput is the data needed to create a habit.
type HabitInput struct {
	Name      string            `json:"name"`
	Type      models.HabitType  `json:"type"`
	Frequency models.WeekdaySet `json:"frequency"`
}

// HabitPatch holds the fields to change on an existing habit. Nil fields are
// left untouched. Switching a habit away from weekly clears its weekdays
// unless Frequency is also given.
type HabitPatch struct {
	Name      *string            `json:"name,omitempty"`
	Type      *models.HabitType  `json:"type,omitempty"`
	Frequency *models.WeekdaySet `json:"frequency,omitempty"`
}

type Habits struct {
	store     storage.Provider
	cache     cache.Cache
	validator *validation.Validator
	now       func() time.Time

	// BeforeDeleteAll runs once before a bulk delete touches the store.
	// A failing hook is logged and does not stop the delete.
	BeforeDeleteAll func(ctx context.Context) error
}

func NewHabits(store storage.Provider, c cache.Cache) *Habits {
	if c == nil {
		c = cache.NewMemory(0)
	}
	return &Habits{
		store:     store,
		cache:     c,
		validator: validation.New(),
		now:       time.Now,
	}
}

// Snapshot returns the owner's habits in creation order. A cached snapshot
// is used only while the owner's version is unchanged; a cache failure falls
// back to the store.
func (s *Habits) Snapshot(ctx context.Context, ownerID string) ([]models.Habit, error) {
	snap, ok, err := s.cache.Get(ctx, ownerID)
	if err != nil {
		logger.Warn("Snapshot cache read failed, reading store", "owner", ownerID, "error", err)
	}
	if ok {
		return snap.Habits, nil
	}

	// Read the version before the store so a concurrent write makes this
	// snapshot stale instead of current.
	version, verr := s.cache.Version(ctx, ownerID)

	habits, err := s.store.GetAllHabits(ctx, ownerID)
	if err != nil {
		return nil, errors.Upstream("load habits", err)
	}

	if verr == nil {
		put := cache.Snapshot{Version: version, Habits: habits, FetchedAt: s.now()}
		if err := s.cache.Put(ctx, ownerID, put); err != nil {
			logger.Warn("Snapshot cache write failed", "owner", ownerID, "error", err)
		}
	}
	return habits, nil
}

func (s *Habits) invalidate(ctx context.Context, ownerID string) error {
	if _, err := s.cache.Invalidate(ctx, ownerID); err != nil {
		return errors.Upstream("invalidate habit cache", err)
	}
	return nil
}

// Get returns one habit by id.
func (s *Habits) Get(ctx context.Context, ownerID, id string) (models.Habit, error) {
	habits, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.ID == id {
			return h, nil
		}
	}
	return models.Habit{}, errors.NotFoundf("habit %s", id)
}

func (s *Habits) Add(ctx context.Context, ownerID string, in HabitInput) (models.Habit, error) {
	h, err := s.validator.Habit(models.Habit{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        in.Name,
		Type:        in.Type,
		Frequency:   in.Frequency,
		CreatedAt:   s.now().UTC(),
		Completions: models.Completions{},
	})
	if err != nil {
		return models.Habit{}, err
	}

	if err := s.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, errors.Upstream("add habit", err)
	}
	logger.Debug("Habit added", "owner", ownerID, "id", h.ID, "type", h.Type)
	return h, s.invalidate(ctx, ownerID)
}

func (s *Habits) Update(ctx context.Context, ownerID, id string, patch HabitPatch) (models.Habit, error) {
	h, err := s.store.GetHabit(ctx, ownerID, id)
	if err != nil {
		return models.Habit{}, errors.Upstream("get habit", err)
	}

	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.Type != nil {
		h.Type = *patch.Type
		if h.Type != models.HabitWeekly && patch.Frequency == nil {
			h.Frequency = 0
		}
	}
	if patch.Frequency != nil {
		h.Frequency = *patch.Frequency
	}

	if h, err = s.validator.Habit(h); err != nil {
		return models.Habit{}, err
	}
	if err := s.store.UpdateHabit(ctx, h); err != nil {
		return models.Habit{}, errors.Upstream("update habit", err)
	}
	return h, s.invalidate(ctx, ownerID)
}

// Toggle flips the completion for day and reports the new state.
func (s *Habits) Toggle(ctx context.Context, ownerID, id string, day calendar.Day) (models.Habit, bool, error) {
	if day.IsZero() {
		return models.Habit{}, false, errors.InvalidInputf("toggle needs a date")
	}

	var done bool
	h, err := s.store.ModifyCompletions(ctx, ownerID, id, func(c models.Completions) {
		done = c.Toggle(day)
	})
	if err != nil {
		return models.Habit{}, false, errors.Upstream("toggle habit", err)
	}
	return h, done, s.invalidate(ctx, ownerID)
}

func (s *Habits) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteHabit(ctx, ownerID, id); err != nil {
		return errors.Upstream("delete habit", err)
	}
	return s.invalidate(ctx, ownerID)
}

// DeleteAll removes every habit of the owner, issuing the deletes
// concurrently and waiting for all of them. It returns how many habits were
// removed. On failure the cache is still invalidated so the next read shows
// what actually remains.
func (s *Habits) DeleteAll(ctx context.Context, ownerID string) (int, error) {
	habits, err := s.store.GetAllHabits(ctx, ownerID)
	if err != nil {
		return 0, errors.Upstream("load habits", err)
	}
	if len(habits) == 0 {
		return 0, nil
	}

	if s.BeforeDeleteAll != nil {
		if err := s.BeforeDeleteAll(ctx); err != nil {
			logger.Warn("Pre-delete hook failed", "owner", ownerID, "error", err)
		}
	}

	// Every delete is attempted even after one fails.
	var deleted atomic.Int64
	var g errgroup.Group
	g.SetLimit(DeleteConcurrency)
	for _, h := range habits {
		g.Go(func() error {
			if err := s.store.DeleteHabit(ctx, ownerID, h.ID); err != nil {
				if errors.Is(err, errors.ErrNotFound) {
					// Already gone; the goal state is reached.
					return nil
				}
				return err
			}
			deleted.Add(1)
			return nil
		})
	}
	werr := g.Wait()

	ierr := s.invalidate(ctx, ownerID)
	n := int(deleted.Load())
	if werr != nil {
		logger.Error("Bulk habit delete failed", "owner", ownerID, "deleted", n, "total", len(habits), "error", werr)
		return n, errors.Upstream("delete all habits", werr)
	}
	logger.Info("Deleted all habits", "owner", ownerID, "count", n)
	return n, ierr
}

// HabitRow is one habit with its state on the dashboard day.
type HabitRow struct {
	Habit           models.Habit       `json:"habit"`
	Due             bool               `json:"due"`
	CompletedOnDay  bool               `json:"completed_on_day"`
	CompletedInWeek bool               `json:"completed_in_week"`
	Week            progress.WeekCount `json:"week"`
}

// Section groups the rows of one habit type with its progress.
type Section struct {
	Type     models.HabitType `json:"type"`
	Progress float64          `json:"progress"`
	Rows     []HabitRow       `json:"rows"`
}

type Dashboard struct {
	Day      calendar.Day     `json:"date"`
	Summary  progress.Summary `json:"summary"`
	Sections []Section        `json:"sections"`
}

// BuildDashboard derives the dashboard for day from an existing snapshot.
// The TUI calls it directly to re-render without touching the store.
func BuildDashboard(habits []models.Habit, day calendar.Day) Dashboard {
	summary := progress.Summarize(habits, day)
	d := Dashboard{Day: day, Summary: summary}

	for _, typ := range models.HabitTypes {
		sec := Section{Type: typ, Rows: []HabitRow{}}
		switch typ {
		case models.HabitMorning:
			sec.Progress = summary.Morning
		case models.HabitDaily:
			sec.Progress = summary.Daily
		case models.HabitWeekly:
			sec.Progress = summary.Weekly
		}
		for _, h := range progress.Group(habits, typ) {
			sec.Rows = append(sec.Rows, HabitRow{
				Habit:           h,
				Due:             progress.IsDueOnDate(h, day),
				CompletedOnDay:  progress.IsCompletedOnDate(h, day),
				CompletedInWeek: progress.IsCompletedInWeek(h, day),
				Week:            progress.WeeklyCompletionCount(h, day),
			})
		}
		d.Sections = append(d.Sections, sec)
	}
	return d
}

func (s *Habits) Dashboard(ctx context.Context, ownerID string, day calendar.Day) (Dashboard, error) {
	if day.IsZero() {
		return Dashboard{}, errors.InvalidInputf("dashboard needs a date")
	}
	habits, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(habits, day), nil
}

// Progress returns the group percentage for mode on day.
func (s *Habits) Progress(ctx context.Context, ownerID string, day calendar.Day, mode progress.Mode) (float64, error) {
	if day.IsZero() {
		return 0, errors.InvalidInputf("progress needs a date")
	}
	habits, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return progress.GroupProgress(habits, day, mode)
}

// Trend returns the daily percentages for the window ending at end. A window
// of zero uses progress.DefaultTrendWindow.
func (s *Habits) Trend(ctx context.Context, ownerID string, window int, end calendar.Day) ([]progress.TrendPoint, error) {
	if window == 0 {
		window = progress.DefaultTrendWindow
	}
	if window < 0 {
		return nil, errors.InvalidInputf("trend window must be positive, got %d", window)
	}
	if end.IsZero() {
		return nil, errors.InvalidInputf("trend needs an end date")
	}
	habits, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return progress.TrendSeries(habits, window, end)
}

// Analysis is the per-habit breakdown shown in the analysis pane.
type Analysis struct {
	Habit           models.Habit         `json:"habit"`
	Day             calendar.Day         `json:"date"`
	Due             bool                 `json:"due"`
	CompletedOnDay  bool                 `json:"completed_on_day"`
	CompletedInWeek bool                 `json:"completed_in_week"`
	Week            progress.WeekCount   `json:"week"`
	Month           *progress.MonthCount `json:"month,omitempty"`
}

// Analyze builds the analysis of h on day. The monthly count is only
// reported for weekly habits.
func Analyze(h models.Habit, day calendar.Day) Analysis {
	a := Analysis{
		Habit:           h,
		Day:             day,
		Due:             progress.IsDueOnDate(h, day),
		CompletedOnDay:  progress.IsCompletedOnDate(h, day),
		CompletedInWeek: progress.IsCompletedInWeek(h, day),
		Week:            progress.WeeklyCompletionCount(h, day),
	}
	if h.Type == models.HabitWeekly {
		mc := progress.MonthlyExpectedVsCompleted(h, day)
		a.Month = &mc
	}
	return a
}

func (s *Habits) Analysis(ctx context.Context, ownerID, id string, day calendar.Day) (Analysis, error) {
	if day.IsZero() {
		return Analysis{}, errors.InvalidInputf("analysis needs a date")
	}
	h, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Analysis{}, err
	}
	return Analyze(h, day), nil
}

// Audit reports inconsistencies in the owner's stored habits.
func (s *Habits) Audit(ctx context.Context, ownerID string, today calendar.Day) (validation.ValidationResult, error) {
	habits, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return s.validator.AuditHabits(habits, today), nil
}

// CacheStats exposes the snapshot cache counters for doctor and metrics.
func (s *Habits) CacheStats() cache.StatsSnapshot {
	return s.cache.Stats()
}
