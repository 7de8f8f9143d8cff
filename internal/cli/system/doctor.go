package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/orbitflow/internal/backup"
	"github.com/julianstephens/orbitflow/internal/calendar"
	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/errors"
	"github.com/julianstephens/orbitflow/internal/storage/sqlstore"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// warnOnly checks print a warning instead of failing the run.
	warnOnly bool
	run      func(context.Context, *cli.Context) error
}

// errSkipped marks a check that does not apply to this setup.
type errSkipped string

func (e errSkipped) Error() string { return string(e) }

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Snapshot cache", warnOnly: true, run: checkCache},
	{name: "Habit integrity", needsDB: true, run: checkHabitsIntegrity},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	bg, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hasError := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(bg, ctx)
		var skipped errSkipped
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.As(err, &skipped):
			fmt.Printf("⊘ %s: SKIPPED (%s)\n", c.name, skipped)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(bg context.Context, ctx *cli.Context) error {
	if err := ctx.Store.Ping(bg); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}
	return nil
}

func checkSchemaVersion(_ context.Context, ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return errSkipped("store has no schema version")
	}
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than this binary supports (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("database is at version %d, latest is %d (run 'orbitflow migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	if ctx.Store.Dialect() != string(sqlstore.SQLite) {
		return errSkipped("backups are SQLite only")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'orbitflow backup create'")
	}
	return nil
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	if _, err := calendar.LoadLocation(ctx.Timezone()); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", ctx.Timezone(), err)
	}
	if time.Now().Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", time.Now().Format(time.RFC3339))
	}
	return nil
}

func checkCache(bg context.Context, ctx *cli.Context) error {
	if ctx.Cache == nil {
		return errSkipped("no cache configured")
	}
	if err := ctx.Cache.Ping(bg); err != nil {
		return fmt.Errorf("%s cache unreachable, reads fall back to the database: %w", ctx.Cache.Stats().Backend, err)
	}
	return nil
}

func checkHabitsIntegrity(bg context.Context, ctx *cli.Context) error {
	owner, err := ctx.Owner(bg)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthenticated) {
			return errSkipped("not logged in")
		}
		return err
	}
	today, err := ctx.Day("")
	if err != nil {
		return err
	}
	result, err := ctx.Habits.Audit(bg, owner, today)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%s", result.FormatReport())
	}
	return nil
}
