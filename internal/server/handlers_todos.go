package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/julianstephens/orbitflow/internal/calendar"
)

type TodoRequest struct {
	Text    string `json:"text"`
	DueDate string `json:"due_date"`
}

type SubtaskRequest struct {
	Text string `json:"text"`
}

type BookmarkRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (s *Server) handleListTodos(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	todos, err := s.deps.Todos.List(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, todos)
}

func (s *Server) handleAddTodo(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req TodoRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	var due *calendar.Day
	if req.DueDate != "" {
		d, err := calendar.ParseDay(req.DueDate)
		if err != nil {
			return err
		}
		due = &d
	}
	t, err := s.deps.Todos.Add(c.Request().Context(), owner, req.Text, due)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleToggleTodo(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	t, err := s.deps.Todos.Toggle(c.Request().Context(), owner, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTodo(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := s.deps.Todos.Delete(c.Request().Context(), owner, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddSubtask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req SubtaskRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	t, err := s.deps.Todos.AddSubtask(c.Request().Context(), owner, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleToggleSubtask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	t, err := s.deps.Todos.ToggleSubtask(c.Request().Context(), owner, c.Param("id"), c.Param("sid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteSubtask(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	t, err := s.deps.Todos.DeleteSubtask(c.Request().Context(), owner, c.Param("id"), c.Param("sid"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleListBookmarks(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	bms, err := s.deps.Bookmarks.List(c.Request().Context(), owner, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bms)
}

func (s *Server) handleAddBookmark(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	var req BookmarkRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	bm, err := s.deps.Bookmarks.Add(c.Request().Context(), owner, req.Title, req.URL, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bm)
}

func (s *Server) handleDeleteBookmark(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	if err := s.deps.Bookmarks.Delete(c.Request().Context(), owner, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
