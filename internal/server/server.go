// Package server exposes the orbitflow services as a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/service"
	"github.com/julianstephens/orbitflow/internal/storage"
)

// Config holds HTTP server configuration.
type Config struct {
	Host     string
	Port     int
	Timezone string
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Deps are the services the API is built on.
type Deps struct {
	Store     storage.Provider
	Accounts  *service.Accounts
	Habits    *service.Habits
	Todos     *service.Todos
	Bookmarks *service.Bookmarks
}

type Server struct {
	echo    *echo.Echo
	deps    Deps
	config  Config
	metrics *Metrics
}

func New(deps Deps, cfg Config) (*Server, error) {
	if deps.Store == nil || deps.Accounts == nil || deps.Habits == nil || deps.Todos == nil || deps.Bookmarks == nil {
		return nil, fmt.Errorf("server requires store, accounts, habits, todos and bookmarks")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		deps:    deps,
		config:  cfg,
		metrics: NewMetrics(deps.Habits.CacheStats),
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(s.metrics.Middleware())

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleLogin)

	api := v1.Group("", s.requireSession)
	api.GET("/auth/me", s.handleMe)

	api.GET("/habits", s.handleListHabits)
	api.POST("/habits", s.handleAddHabit)
	api.DELETE("/habits", s.handleDeleteAllHabits)
	api.GET("/habits/progress", s.handleProgress)
	api.GET("/habits/trend", s.handleTrend)
	api.PATCH("/habits/:id", s.handleUpdateHabit)
	api.DELETE("/habits/:id", s.handleDeleteHabit)
	api.POST("/habits/:id/toggle", s.handleToggleHabit)
	api.GET("/habits/:id/analysis", s.handleAnalysis)

	api.GET("/todos", s.handleListTodos)
	api.POST("/todos", s.handleAddTodo)
	api.POST("/todos/:id/toggle", s.handleToggleTodo)
	api.DELETE("/todos/:id", s.handleDeleteTodo)
	api.POST("/todos/:id/subtasks", s.handleAddSubtask)
	api.POST("/todos/:id/subtasks/:sid/toggle", s.handleToggleSubtask)
	api.DELETE("/todos/:id/subtasks/:sid", s.handleDeleteSubtask)

	api.GET("/bookmarks", s.handleListBookmarks)
	api.POST("/bookmarks", s.handleAddBookmark)
	api.DELETE("/bookmarks/:id", s.handleDeleteBookmark)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok", Cache: s.deps.Habits.CacheStats().Backend}
	if err := s.deps.Store.Ping(ctx); err != nil {
		logger.Warn("Health check failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := s.config.Addr()
	logger.Info("Starting HTTP server", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}
