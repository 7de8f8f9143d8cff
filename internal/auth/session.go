package auth

import (
	"context"
	"time"

	"github.com/julianstephens/orbitflow/internal/errors"
)

// Session identifies the owner every data operation is scoped to.
type Session struct {
	OwnerID   string    `json:"owner_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session names an owner.
func (s Session) Valid() bool {
	return s.OwnerID != ""
}

type sessionKey struct{}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || !s.Valid() {
		return Session{}, errors.ErrUnauthenticated
	}
	return s, nil
}
