// Package auth issues and checks owner sessions. Passwords are bcrypt
// hashes; sessions are HS256 JWTs carrying the owner id.
package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/julianstephens/orbitflow/internal/errors"
)

var (
	// ErrInvalidToken is returned for malformed, tampered or foreign tokens.
	ErrInvalidToken = fmt.Errorf("%w: invalid session token", errors.ErrUnauthenticated)
	// ErrExpiredToken is returned once a token is past its expiry.
	ErrExpiredToken = fmt.Errorf("%w: session expired, log in again", errors.ErrUnauthenticated)
)

// Config holds session token settings.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims are the JWT claims of an orbitflow session.
type Claims struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and validates session tokens.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager creates a Manager. An empty secret is rejected.
func NewManager(config Config) (*Manager, error) {
	if config.Secret == "" {
		return nil, errors.InvalidInputf("session signing secret is empty")
	}
	if config.TTL <= 0 {
		return nil, errors.InvalidInputf("session TTL must be positive, got %s", config.TTL)
	}
	return &Manager{config: config, now: time.Now}, nil
}

// Issue returns a signed token for the owner.
func (m *Manager) Issue(ownerID, email string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.config.TTL)
	claims := Claims{
		OwnerID: ownerID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   ownerID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expires, nil
}

// Validate parses token and returns the session it carries.
func (m *Manager) Validate(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(m.config.Secret), nil
	}, opts...)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrExpiredToken
		}
		return Session{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.OwnerID == "" {
		return Session{}, ErrInvalidToken
	}

	return Session{
		OwnerID:   claims.OwnerID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.config.TTL
}
