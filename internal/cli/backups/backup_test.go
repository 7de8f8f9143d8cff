package backups

import (
	"context"
	"testing"

	"github.com/julianstephens/orbitflow/internal/backup"
	"github.com/julianstephens/orbitflow/internal/cli/clitest"
)

func TestBackupCreateListRestore(t *testing.T) {
	ctx := clitest.New(t)
	owner := clitest.Owner(t, ctx)
	bg := context.Background()

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list on empty dir failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	infos, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(infos))
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}

	if _, err := ctx.Todos.Add(bg, owner, "added after backup", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	restore := BackupRestoreCmd{BackupFile: infos[0].Name(), Yes: true}
	if err := restore.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("reload after restore failed: %v", err)
	}
	todos, err := ctx.Todos.List(bg, owner)
	if err != nil {
		t.Fatalf("List todos failed: %v", err)
	}
	if len(todos) != 0 {
		t.Errorf("expected restore to drop the later todo, got %d todos", len(todos))
	}

	infos, _ = mgr.List()
	if len(infos) < 2 {
		t.Errorf("expected a safety copy next to the original backup, got %d backups", len(infos))
	}
}

func TestRestoreMissingFile(t *testing.T) {
	ctx := clitest.New(t)
	if err := (&BackupRestoreCmd{BackupFile: "nope.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected an error for a missing backup")
	}
}
