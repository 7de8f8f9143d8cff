package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/orbitflow/internal/auth"
	"github.com/julianstephens/orbitflow/internal/backup"
	"github.com/julianstephens/orbitflow/internal/cache"
	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/config"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/keyring"
	"github.com/julianstephens/orbitflow/internal/logger"
	"github.com/julianstephens/orbitflow/internal/service"
	"github.com/julianstephens/orbitflow/internal/storage"
	"github.com/julianstephens/orbitflow/internal/storage/postgres"
	"github.com/julianstephens/orbitflow/internal/storage/sqlite"
	"github.com/julianstephens/orbitflow/internal/storage/sqlstore"
)

type Context struct {
	Config *config.Config
	Store  storage.Provider
	Cache  cache.Cache

	Accounts  *service.Accounts
	Habits    *service.Habits
	Todos     *service.Todos
	Bookmarks *service.Bookmarks
	Tokens    *auth.Manager

	// TokenSource returns the saved session token. Nil means
	// ORBITFLOW_TOKEN, then the OS keyring.
	TokenSource func() (string, error)
}

// NewContext wires the services over store. tokens may be nil when no
// signing secret is available; commands that need a session then fail with
// ErrUnauthenticated.
func NewContext(cfg *config.Config, store storage.Provider, c cache.Cache, tokens *auth.Manager) *Context {
	ctx := &Context{
		Config:    cfg,
		Store:     store,
		Cache:     c,
		Habits:    service.NewHabits(store, c),
		Todos:     service.NewTodos(store),
		Bookmarks: service.NewBookmarks(store),
		Tokens:    tokens,
	}
	if tokens != nil {
		ctx.Accounts = service.NewAccounts(store, auth.NewPasswordHasher(), tokens)
	}
	ctx.Habits.BeforeDeleteAll = func(context.Context) error {
		ctx.PerformAutomaticBackup()
		return nil
	}
	return ctx
}

// Timezone returns the configured timezone, or Local without a config.
func (c *Context) Timezone() string {
	if c.Config == nil {
		return "Local"
	}
	return c.Config.Timezone
}

// Day parses a --date flag, defaulting to today in the configured timezone.
func (c *Context) Day(s string) (calendar.Day, error) {
	return calendar.ResolveDay(s, c.Timezone())
}

func (c *Context) token() (string, error) {
	if c.TokenSource != nil {
		return c.TokenSource()
	}
	if tok := strings.TrimSpace(os.Getenv(constants.EnvSessionToken)); tok != "" {
		return tok, nil
	}
	tok, err := keyring.GetSessionToken()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: not logged in (run 'orbitflow account login')", errors.ErrUnauthenticated)
		}
		return "", err
	}
	return tok, nil
}

// Session resolves the saved token into the current owner's session.
func (c *Context) Session(ctx context.Context) (auth.Session, error) {
	if c.Accounts == nil {
		return auth.Session{}, fmt.Errorf("%w: no signing secret available (set %s or enable the OS keyring)",
			errors.ErrUnauthenticated, constants.EnvJWTSecret)
	}
	tok, err := c.token()
	if err != nil {
		return auth.Session{}, err
	}
	sess, err := c.Accounts.Resolve(ctx, tok)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthenticated) {
			return auth.Session{}, fmt.Errorf("%w: session expired or invalid (run 'orbitflow account login')", errors.ErrUnauthenticated)
		}
		return auth.Session{}, err
	}
	return sess, nil
}

// Owner returns the id of the logged-in owner.
func (c *Context) Owner(ctx context.Context) (string, error) {
	sess, err := c.Session(ctx)
	if err != nil {
		return "", err
	}
	return sess.OwnerID, nil
}

// PerformAutomaticBackup creates a backup of a SQLite store. Failures are
// logged and otherwise ignored.
func (c *Context) PerformAutomaticBackup() {
	if c.Store == nil || c.Store.Dialect() != string(sqlstore.SQLite) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// NewProvider opens the store named by dsn: PostgreSQL for connection
// strings, SQLite for file paths. PostgreSQL strings from flags, files or
// the environment must not carry a password.
func NewProvider(dsn string, allowCredentials bool) (storage.Provider, error) {
	if postgres.IsPostgresURL(dsn) {
		if ok, err := postgres.ValidateConnString(dsn); !ok {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) && allowCredentials {
				return postgres.New(dsn), nil
			}
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: use the OS keyring ('orbitflow keyring set'), %s, or ~/.pgpass instead",
					err, constants.EnvDBConnection)
			}
			return nil, err
		}
		return postgres.New(dsn), nil
	}
	path, err := config.ExpandHome(dsn)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ResolveDSN picks the database: the --database flag, then
// ORBITFLOW_DB_CONNECTION, then a connection string saved in the keyring,
// then database.url from the config. The boolean reports whether the DSN
// came from a secret store and may embed credentials.
func ResolveDSN(flag string, cfg *config.Config) (string, bool) {
	if flag != "" {
		return flag, false
	}
	if env := strings.TrimSpace(os.Getenv(constants.EnvDBConnection)); env != "" {
		return env, true
	}
	if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
		return connStr, true
	}
	return cfg.Database.URL, false
}

// SigningSecret returns the session signing secret from
// ORBITFLOW_JWT_SECRET or the OS keyring.
func SigningSecret() (string, error) {
	if s := os.Getenv(constants.EnvJWTSecret); s != "" {
		return s, nil
	}
	return keyring.SigningSecret()
}

// NewTokenManager builds the session token manager from cfg.
func NewTokenManager(cfg *config.Config) (*auth.Manager, error) {
	secret, err := SigningSecret()
	if err != nil {
		return nil, err
	}
	return auth.NewManager(auth.Config{
		Secret: secret,
		TTL:    cfg.Server.TokenTTL.Duration(),
		Issuer: cfg.Server.Issuer,
	})
}
