package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/progress"
	"github.com/julianstephens/orbitflow/internal/service"
)

// ToggleRequest is the optional body of POST /habits/:id/toggle.
type ToggleRequest struct {
	Date string `json:"date"`
}

type ToggleResponse struct {
	ID        string       `json:"id"`
	Date      calendar.Day `json:"date"`
	Completed bool         `json:"completed"`
}

type ProgressResponse struct {
	Date       calendar.Day  `json:"date"`
	Mode       progress.Mode `json:"mode"`
	Percentage float64       `json:"percentage"`
}

type DeletedResponse struct {
	Deleted int `json:"deleted"`
}

// day resolves the "date" query parameter, defaulting to today in the
// configured timezone.
func (s *Server) day(raw string) (calendar.Day, error) {
	d, err := calendar.ResolveDay(raw, s.config.Timezone)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidInput) {
			return calendar.Day{}, err
		}
		return calendar.Day{}, errors.InvalidInputf("%v", err)
	}
	return d, nil
}

func (s *Server) handleListHabits(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	habits, err := s.deps.Habits.Snapshot(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, habits)
}

func (s *Server) handleAddHabit(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var in service.HabitInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	h, err := s.deps.Habits.Add(c.Request().Context(), owner, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h)
}

func (s *Server) handleUpdateHabit(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var patch service.HabitPatch
	if err := bindJSON(c, &patch); err != nil {
		return err
	}
	h, err := s.deps.Habits.Update(c.Request().Context(), owner, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h)
}

func (s *Server) handleDeleteHabit(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := s.deps.Habits.Delete(c.Request().Context(), owner, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handleDeleteAllHabits requires ?confirm=true so a bare DELETE on the
// collection cannot wipe it.
func (s *Server) handleDeleteAllHabits(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if confirm, _ := strconv.ParseBool(c.QueryParam("confirm")); !confirm {
		return errors.InvalidInputf("deleting all habits requires confirm=true")
	}
	n, err := s.deps.Habits.DeleteAll(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeletedResponse{Deleted: n})
}

func (s *Server) handleToggleHabit(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req ToggleRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	raw := c.QueryParam("date")
	if req.Date != "" {
		raw = req.Date
	}
	day, err := s.day(raw)
	if err != nil {
		return err
	}

	h, done, err := s.deps.Habits.Toggle(c.Request().Context(), owner, c.Param("id"), day)
	if err != nil {
		return err
	}
	s.metrics.recordToggle(done)
	return c.JSON(http.StatusOK, ToggleResponse{ID: h.ID, Date: day, Completed: done})
}

// handleProgress returns the whole dashboard, or a single group percentage
// when mode is given.
func (s *Server) handleProgress(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	day, err := s.day(c.QueryParam("date"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if raw := c.QueryParam("mode"); raw != "" {
		mode, err := progress.ParseMode(raw)
		if err != nil {
			return err
		}
		pct, err := s.deps.Habits.Progress(ctx, owner, day, mode)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, ProgressResponse{Date: day, Mode: mode, Percentage: pct})
	}

	dash, err := s.deps.Habits.Dashboard(ctx, owner, day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dash)
}

func (s *Server) handleTrend(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	end, err := s.day(c.QueryParam("end"))
	if err != nil {
		return err
	}
	window := 0
	if raw := c.QueryParam("days"); raw != "" {
		if window, err = strconv.Atoi(raw); err != nil || window <= 0 {
			return errors.InvalidInputf("days must be a positive integer, got %q", raw)
		}
	}
	points, err := s.deps.Habits.Trend(c.Request().Context(), owner, window, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, points)
}

func (s *Server) handleAnalysis(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	day, err := s.day(c.QueryParam("date"))
	if err != nil {
		return err
	}
	a, err := s.deps.Habits.Analysis(c.Request().Context(), owner, c.Param("id"), day)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
