package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesLogDir(t *testing.T) {
	dir := t.TempDir()

	if err := Init(Config{ConfigDir: dir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("expected logs directory: %v", err)
	}
	if !info.IsDir() {
		t.Error("logs path is not a directory")
	}
	if Logger == nil {
		t.Error("Logger should be set after Init")
	}
}

func TestUseWriter(t *testing.T) {
	var buf bytes.Buffer
	UseWriter(&buf, false)

	Info("habit toggled", "habit", "read")
	Debug("hidden at info level")

	out := buf.String()
	if !strings.Contains(out, "habit toggled") {
		t.Errorf("expected info message in output, got %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug message should be filtered, got %q", out)
	}
}

func TestHelpersWithNilLogger(t *testing.T) {
	Logger = nil
	// Must not panic
	Debug("x")
	Info("x")
	Warn("x")
	Error("x")
}
