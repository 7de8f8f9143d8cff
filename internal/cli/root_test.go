package cli_test

import (
	"context"
	"path/filepath"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/orbitflow/internal/backup"
	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/cli/clitest"
	"github.com/julianstephens/orbitflow/internal/config"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/keyring"
	"github.com/julianstephens/orbitflow/internal/storage/postgres"
	"github.com/julianstephens/orbitflow/internal/storage/sqlstore"
)

func TestResolveDSN(t *testing.T) {
	gokeyring.MockInit()
	cfg := &config.Config{Database: config.DatabaseConfig{URL: "/tmp/from-config.db"}}

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "")
		dsn, secret := cli.ResolveDSN("", cfg)
		if dsn != cfg.Database.URL || secret {
			t.Errorf("got (%q, %v), want config url without secret", dsn, secret)
		}
	})

	t.Run("keyring beats config", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "")
		if err := keyring.SetConnectionString("postgres://me:pw@db/orbitflow"); err != nil {
			t.Fatalf("SetConnectionString failed: %v", err)
		}
		t.Cleanup(func() { keyring.DeleteConnectionString() })

		dsn, secret := cli.ResolveDSN("", cfg)
		if dsn != "postgres://me:pw@db/orbitflow" || !secret {
			t.Errorf("got (%q, %v), want keyring dsn as secret", dsn, secret)
		}
	})

	t.Run("env beats keyring", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "postgres://env@db/orbitflow")
		dsn, secret := cli.ResolveDSN("", cfg)
		if dsn != "postgres://env@db/orbitflow" || !secret {
			t.Errorf("got (%q, %v), want env dsn as secret", dsn, secret)
		}
	})

	t.Run("flag beats everything", func(t *testing.T) {
		t.Setenv(constants.EnvDBConnection, "postgres://env@db/orbitflow")
		dsn, secret := cli.ResolveDSN("/tmp/flag.db", cfg)
		if dsn != "/tmp/flag.db" || secret {
			t.Errorf("got (%q, %v), want flag dsn without secret", dsn, secret)
		}
	})
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		dsn         string
		allowSecret bool
		wantDialect string
		wantErr     error
	}{
		{"sqlite path", filepath.Join(t.TempDir(), "x.db"), false, string(sqlstore.SQLite), nil},
		{"postgres without password", "postgres://me@localhost/orbitflow", false, string(sqlstore.Postgres), nil},
		{"embedded password from flag", "postgres://me:pw@localhost/orbitflow", false, "", postgres.ErrEmbeddedCredentials},
		{"embedded password from secret store", "postgres://me:pw@localhost/orbitflow", true, string(sqlstore.Postgres), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := cli.NewProvider(tt.dsn, tt.allowSecret)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewProvider() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if store.Dialect() != tt.wantDialect {
				t.Errorf("Dialect() = %q, want %q", store.Dialect(), tt.wantDialect)
			}
		})
	}
}

func TestSession(t *testing.T) {
	ctx := clitest.New(t)
	sess, err := ctx.Session(context.Background())
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if sess.Email != clitest.Email {
		t.Errorf("Email = %q, want %q", sess.Email, clitest.Email)
	}

	anon := clitest.NewAnonymous(t)
	if _, err := anon.Owner(context.Background()); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated without a token, got %v", err)
	}

	anon.TokenSource = func() (string, error) { return "not-a-jwt", nil }
	if _, err := anon.Owner(context.Background()); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for a bad token, got %v", err)
	}
}

func TestSessionFromEnv(t *testing.T) {
	ctx := clitest.New(t)
	tok, err := ctx.TokenSource()
	if err != nil {
		t.Fatalf("TokenSource failed: %v", err)
	}
	ctx.TokenSource = nil
	t.Setenv(constants.EnvSessionToken, tok)

	if _, err := ctx.Owner(context.Background()); err != nil {
		t.Errorf("expected env token to resolve, got %v", err)
	}
}

func TestSessionWithoutSigningSecret(t *testing.T) {
	ctx := clitest.NewAnonymous(t)
	bare := cli.NewContext(ctx.Config, ctx.Store, ctx.Cache, nil)
	if bare.Accounts != nil {
		t.Fatal("expected no accounts service without a token manager")
	}
	if _, err := bare.Session(context.Background()); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPerformAutomaticBackup(t *testing.T) {
	ctx := clitest.NewAnonymous(t)
	ctx.PerformAutomaticBackup()

	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestDay(t *testing.T) {
	ctx := clitest.NewAnonymous(t)
	d, err := ctx.Day("2024-03-04")
	if err != nil {
		t.Fatalf("Day failed: %v", err)
	}
	if d.Key() != "2024-03-04" {
		t.Errorf("Day() = %s", d)
	}
	if _, err := ctx.Day("03/04/2024"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
