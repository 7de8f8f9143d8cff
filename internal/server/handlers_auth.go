package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/julianstephens/orbitflow/internal/auth"
	"github.com/julianstephens/orbitflow/internal/errors"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func bindJSON(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errors.InvalidInputf("malformed request body")
	}
	return nil
}

func (s *Server) handleRegister(c echo.Context) error {
	var req CredentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	owner, err := s.deps.Accounts.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, owner)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req CredentialsRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	tok, err := s.deps.Accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tok)
}

func (s *Server) handleMe(c echo.Context) error {
	sess, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sess)
}
