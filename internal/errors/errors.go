package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/orbitflow/internal/logger"
)

var (
	// ErrInvalidInput marks malformed caller input: bad dates, unknown weekday
	// tokens, empty names, invalid URLs.
	ErrInvalidInput = stderrors.New("invalid input")
	// ErrUpstreamUnavailable marks a failed read or write against the store or
	// cache. The caller keeps whatever snapshot it already has.
	ErrUpstreamUnavailable = stderrors.New("upstream unavailable")
	// ErrNotFound is returned when a record does not exist for the current owner.
	ErrNotFound = stderrors.New("not found")
	// ErrUnauthenticated is returned when no valid session is present.
	ErrUnauthenticated = stderrors.New("not logged in")
	// ErrConflict is returned when a unique constraint would be violated or a
	// record changed underneath a write too many times.
	ErrConflict = stderrors.New("conflict")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// InvalidInputf returns an error wrapping ErrInvalidInput with a formatted message.
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// NotFoundf returns an error wrapping ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Upstream wraps a storage or cache failure for operation op.
// Errors that already carry one of the taxonomy sentinels pass through unchanged.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrNotFound) || stderrors.Is(err, ErrInvalidInput) ||
		stderrors.Is(err, ErrConflict) || stderrors.Is(err, ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, op, err)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
