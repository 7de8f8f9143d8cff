package migration

import (
	"database/sql"
	"os"
	"testing"

	"github.com/julianstephens/orbitflow/migrations"

	_ "github.com/lib/pq"
)

// setupPostgresTestDB connects to the database named by POSTGRES_TEST_URL.
// Example: POSTGRES_TEST_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	drop := func() {
		for _, table := range []string{"bookmarks", "todos", "habits", "owners", "test_users", "schema_version"} {
			db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE")
		}
	}
	drop()
	t.Cleanup(func() {
		drop()
		db.Close()
	})
	return db
}

func TestPostgresSetVersion(t *testing.T) {
	db := setupPostgresTestDB(t)

	runner, err := NewRunner(db, setupTestMigrations(map[string]string{
		"001_init.sql": "CREATE TABLE test_users (id SERIAL PRIMARY KEY);",
	}), DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	for _, want := range []int{1, 2} {
		if err := runner.SetVersion(want); err != nil {
			t.Fatalf("SetVersion(%d) failed: %v", want, err)
		}
		got, err := runner.GetCurrentVersion()
		if err != nil {
			t.Fatalf("GetCurrentVersion failed: %v", err)
		}
		if got != want {
			t.Errorf("expected version %d, got %d", want, got)
		}
	}
}

func TestPostgresEmbeddedMigrations(t *testing.T) {
	db := setupPostgresTestDB(t)

	sub, err := migrations.Dialect("postgres")
	if err != nil {
		t.Fatalf("Dialect failed: %v", err)
	}
	runner, err := NewRunner(db, sub, DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count == 0 {
		t.Error("expected migrations to be applied")
	}

	var exists bool
	err = db.QueryRow("SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'habits')").Scan(&exists)
	if err != nil {
		t.Fatalf("failed to check habits table: %v", err)
	}
	if !exists {
		t.Error("habits table was not created")
	}

	count, err = runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations (2nd) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 migrations on second run, got %d", count)
	}
}
