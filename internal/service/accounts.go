package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/orbitflow/internal/auth"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/models"
	"github.com/julianstephens/orbitflow/internal/storage"
	"github.com/julianstephens/orbitflow/internal/validation"
)

// ErrBadCredentials is returned by Login for an unknown email or a wrong
// password; the two cases are not distinguished.
var ErrBadCredentials = errors.ErrUnauthenticated

// Accounts registers owners and turns credentials into sessions.
type Accounts struct {
	store     storage.Provider
	hasher    *auth.PasswordHasher
	tokens    *auth.Manager
	validator *validation.Validator
	now       func() time.Time
}

func NewAccounts(store storage.Provider, hasher *auth.PasswordHasher, tokens *auth.Manager) *Accounts {
	return &Accounts{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		validator: validation.New(),
		now:       time.Now,
	}
}

// Register creates an owner. A taken email yields errors.ErrConflict.
func (s *Accounts) Register(ctx context.Context, email, password string) (models.Owner, error) {
	email, err := s.validator.Credentials(email, password)
	if err != nil {
		return models.Owner{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.Owner{}, err
	}

	owner := models.Owner{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.AddOwner(ctx, owner); err != nil {
		if errors.Is(err, errors.ErrConflict) {
			return models.Owner{}, fmt.Errorf("%w: %s is already registered", errors.ErrConflict, email)
		}
		return models.Owner{}, errors.Upstream("register owner", err)
	}
	logger.Info("Owner registered", "owner", owner.ID)
	return owner, nil
}

// Token is a signed session token with its expiry.
type Token struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Session   auth.Session `json:"session"`
}

func (s *Accounts) Login(ctx context.Context, email, password string) (Token, error) {
	owner, err := s.store.GetOwnerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return Token{}, ErrBadCredentials
		}
		return Token{}, errors.Upstream("find owner", err)
	}
	if !s.hasher.Verify(password, owner.PasswordHash) {
		logger.Warn("Failed login", "owner", owner.ID)
		return Token{}, ErrBadCredentials
	}

	token, expires, err := s.tokens.Issue(owner.ID, owner.Email)
	if err != nil {
		return Token{}, err
	}
	return Token{
		Token:     token,
		ExpiresAt: expires,
		Session:   auth.Session{OwnerID: owner.ID, Email: owner.Email, ExpiresAt: expires},
	}, nil
}

// Resolve validates token and checks that its owner still exists.
func (s *Accounts) Resolve(ctx context.Context, token string) (auth.Session, error) {
	sess, err := s.tokens.Validate(token)
	if err != nil {
		return auth.Session{}, err
	}
	if _, err := s.store.GetOwner(ctx, sess.OwnerID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return auth.Session{}, errors.ErrUnauthenticated
		}
		return auth.Session{}, errors.Upstream("find owner", err)
	}
	return sess, nil
}
