package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/orbitflow/internal/cache"
	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/cli/accounts"
	"github.com/julianstephens/orbitflow/internal/cli/backups"
	"github.com/julianstephens/orbitflow/internal/cli/bookmarks"
	"github.com/julianstephens/orbitflow/internal/cli/habits"
	"github.com/julianstephens/orbitflow/internal/cli/system"
	"github.com/julianstephens/orbitflow/internal/cli/todos"
	"github.com/julianstephens/orbitflow/internal/config"
	"github.com/julianstephens/orbitflow/internal/constants"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Path to config.yaml." type:"path" default:"~/.config/orbitflow/config.yaml"`
	Database string `help:"SQLite path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded here; use ORBITFLOW_DB_CONNECTION, the OS keyring or .pgpass instead." placeholder:"DSN"`
	Debug    bool   `help:"Enable debug logging."`

	Init    system.InitCmd    `cmd:"" help:"Initialize orbitflow storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Serve the JSON API."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive habit dashboard." default:"1"`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the database connection string in the OS keyring."`

	Account  accounts.AccountCmd   `cmd:"" help:"Register, log in and log out."`
	Habit    habits.HabitCmd       `cmd:"" help:"Manage habits and habit tracking."`
	Todo     todos.TodoCmd         `cmd:"" help:"Manage todos and subtasks."`
	Bookmark bookmarks.BookmarkCmd `cmd:"" help:"Manage bookmarks."`
	Backup   backups.BackupCmd     `cmd:"" help:"Manage database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracking and personal productivity"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	configDir, err := config.Dir()
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug || cfg.Log.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	snapshots, err := cache.New(context.Background(), cache.Config{
		RedisAddr: cfg.Cache.RedisAddr,
		Prefix:    cfg.Cache.Prefix,
		TTL:       cfg.Cache.TTL.Duration(),
	})
	if err != nil {
		logger.Warn("Snapshot cache unavailable, using in-memory cache", "error", err)
		snapshots = cache.NewMemory(cfg.Cache.TTL.Duration())
	}
	defer snapshots.Close()

	dsn, fromSecret := cli.ResolveDSN(CLI.Database, cfg)
	store, err := cli.NewProvider(dsn, fromSecret)
	if err != nil {
		errors.Fatal(err)
	}

	// init loads the store itself.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}
	defer store.Close()

	tokens, err := cli.NewTokenManager(cfg)
	if err != nil {
		logger.Warn("Session tokens unavailable", "error", err)
	}

	appCtx := cli.NewContext(cfg, store, snapshots, tokens)
	if err := ctx.Run(appCtx); err != nil {
		logger.Debug("Command failed", "command", ctx.Command(), "error", err)
		errors.Fatal(err)
	}
}
