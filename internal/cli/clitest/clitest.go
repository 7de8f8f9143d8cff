// Package clitest builds a logged-in cli.Context over a temporary SQLite
// database for command tests.
package clitest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/orbitflow/internal/auth"
	"github.com/julianstephens/orbitflow/internal/cache"
	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/config"
	"github.com/julianstephens/orbitflow/internal/storage/sqlite"
)

const (
	Email    = "cli@example.com"
	Password = "correct horse battery"
)

// New returns a Context whose TokenSource yields a valid session for
// Email. The database lives under t.TempDir().
func New(t *testing.T) *cli.Context {
	t.Helper()
	ctx := NewAnonymous(t)

	bg := context.Background()
	if _, err := ctx.Accounts.Register(bg, Email, Password); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	tok, err := ctx.Accounts.Login(bg, Email, Password)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	ctx.TokenSource = func() (string, error) { return tok.Token, nil }
	return ctx
}

// NewAnonymous returns a Context with no saved session.
func NewAnonymous(t *testing.T) *cli.Context {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "orbitflow.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: dbPath},
		Timezone: "UTC",
		Server: config.ServerConfig{
			Host:     "localhost",
			Port:     0,
			TokenTTL: config.Duration(time.Hour),
			Issuer:   "orbitflow-test",
		},
	}
	tokens, err := auth.NewManager(auth.Config{Secret: "test-secret", TTL: time.Hour, Issuer: cfg.Server.Issuer})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	ctx := cli.NewContext(cfg, store, cache.NewMemory(0), tokens)
	ctx.TokenSource = func() (string, error) { return "", nil }
	return ctx
}

// Owner returns the id of the logged-in owner.
func Owner(t *testing.T, ctx *cli.Context) string {
	t.Helper()
	owner, err := ctx.Owner(context.Background())
	if err != nil {
		t.Fatalf("Owner failed: %v", err)
	}
	return owner
}
