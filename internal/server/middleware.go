package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/julianstephens/orbitflow/internal/auth"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/logger"
)

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the error handler write the status before logging it.
				c.Error(err)
			}
			logger.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}

// requireSession resolves the bearer token into an auth.Session stored on
// the request context.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return errors.ErrUnauthenticated
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return &echo.HTTPError{Code: http.StatusUnauthorized, Message: "use: Authorization: Bearer <token>"}
		}

		sess, err := s.deps.Accounts.Resolve(c.Request().Context(), strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.SetRequest(c.Request().WithContext(auth.WithSession(c.Request().Context(), sess)))
		return next(c)
	}
}

// ownerID returns the owner of the current request. Only valid behind
// requireSession.
func ownerID(c echo.Context) (string, error) {
	sess, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return "", err
	}
	return sess.OwnerID, nil
}
