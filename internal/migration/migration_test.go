package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/julianstephens/orbitflow/migrations"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestMigrations(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func newSQLiteRunner(t *testing.T, db *sql.DB, files map[string]string) *Runner {
	t.Helper()
	runner, err := NewRunner(db, setupTestMigrations(files), DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	return runner
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count == 1
}

func TestNewRunnerRejectsUnknownDriver(t *testing.T) {
	db := setupTestDB(t)
	if _, err := NewRunner(db, fstest.MapFS{}, Driver("mysql")); err == nil {
		t.Error("expected error for unsupported driver")
	}
	if _, err := NewRunner(nil, fstest.MapFS{}, DriverSQLite); err == nil {
		t.Error("expected error for nil database")
	}
}

func TestGetCurrentVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"001_test.sql": "CREATE TABLE test (id INTEGER);",
	})

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	version, err = runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"002_second.sql": "CREATE TABLE b (id INTEGER);",
		"001_first.sql":  "CREATE TABLE a (id INTEGER);",
		"README.md":      "not a migration",
	})

	migrations, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "first" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Name != "second" {
		t.Errorf("unexpected second migration: %+v", migrations[1])
	}
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql":  `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);`,
		"002_posts.sql": `CREATE TABLE posts (id INTEGER PRIMARY KEY, user_id INTEGER, content TEXT);`,
	})

	var lines []string
	count, err := runner.ApplyMigrations(func(s string) { lines = append(lines, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}
	if len(lines) == 0 {
		t.Error("expected progress lines from ApplyMigrations")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	if !tableExists(t, db, "users") || !tableExists(t, db, "posts") {
		t.Error("expected users and posts tables to be created")
	}
}

func TestApplyMigrationsIncremental(t *testing.T) {
	db := setupTestDB(t)
	first := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql": `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
	})
	if count, err := first.ApplyMigrations(nil); err != nil || count != 1 {
		t.Fatalf("first ApplyMigrations = %d, %v", count, err)
	}

	second := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql":  `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
		"002_posts.sql": `CREATE TABLE posts (id INTEGER PRIMARY KEY);`,
	})

	pending, err := second.Pending()
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Errorf("expected only migration 2 pending, got %+v", pending)
	}

	count, err := second.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 migration applied, got %d", count)
	}
	if !tableExists(t, db, "posts") {
		t.Error("posts table was not created")
	}
}

func TestApplyMigrationsNoOp(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql": `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
	})

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 migrations applied on second run, got %d", count)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql": `
			CREATE TABLE users (id INTEGER PRIMARY KEY);
			THIS IS INVALID SQL;
		`,
	})

	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with invalid SQL")
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after failed migration, got %d", version)
	}
	if tableExists(t, db, "users") {
		t.Error("table should not exist after failed migration")
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql": `CREATE TABLE users (id INTEGER PRIMARY KEY);`,
	})

	if err := runner.SetVersion(10); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if err := runner.ValidateVersion(); err == nil {
		t.Fatal("ValidateVersion should have failed with newer database version")
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Fatal("ApplyMigrations should have failed with newer database version")
	}
}

func TestGetLatestVersion(t *testing.T) {
	db := setupTestDB(t)
	runner := newSQLiteRunner(t, db, map[string]string{
		"001_init.sql":   `CREATE TABLE users (id INTEGER);`,
		"003_posts.sql":  `CREATE TABLE posts (id INTEGER);`,
		"002_update.sql": `ALTER TABLE users ADD COLUMN name TEXT;`,
	})

	latest, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion failed: %v", err)
	}
	if latest != 3 {
		t.Errorf("expected latest version 3, got %d", latest)
	}
}

func TestMigrationFilenameValidation(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "no underscore",
			files:   map[string]string{"001init.sql": `SELECT 1;`},
			wantErr: "invalid migration filename format",
		},
		{
			name:    "zero version",
			files:   map[string]string{"000_init.sql": `SELECT 1;`},
			wantErr: "version must be at least 1",
		},
		{
			name:    "non-numeric version",
			files:   map[string]string{"abc_init.sql": `SELECT 1;`},
			wantErr: "invalid version number",
		},
		{
			name: "duplicate version",
			files: map[string]string{
				"001_init.sql":  `SELECT 1;`,
				"001_other.sql": `SELECT 2;`,
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newSQLiteRunner(t, setupTestDB(t), tt.files)
			_, err := runner.ReadMigrationFiles()
			if err == nil {
				t.Fatal("ReadMigrationFiles should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	db := setupTestDB(t)
	sub, err := migrations.Dialect("sqlite")
	if err != nil {
		t.Fatalf("Dialect failed: %v", err)
	}
	runner, err := NewRunner(db, sub, DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	for _, table := range []string{"owners", "habits", "todos", "bookmarks"} {
		if !tableExists(t, db, table) {
			t.Errorf("expected table %s", table)
		}
	}
}
