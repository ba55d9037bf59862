package logfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"runtrace/internal/store"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestNewMirrorCleansUpOnOpenFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory occupying one of the log file names makes the open
	// fail partway through; already opened files must be closed and the
	// error returned.
	if err := os.Mkdir(filepath.Join(dir, "warning.log"), 0755); err != nil {
		t.Fatalf("seed conflicting dir: %v", err)
	}

	if _, err := NewMirror(dir, 7); err == nil {
		t.Fatal("expected error when a log file cannot be opened, got nil")
	}
}

func TestWriteRespectsThresholds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := NewMirror(dir, 7)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Close()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.Write(at, "Scraper", store.LevelWarning, "slow response")
	m.Write(at, "Scraper", store.LevelInfo, "page fetched")

	all := readFile(t, filepath.Join(dir, "all_logs.log"))
	if !strings.Contains(all, "slow response") || !strings.Contains(all, "page fetched") {
		t.Fatalf("all_logs.log missing lines:\n%s", all)
	}

	warning := readFile(t, filepath.Join(dir, "warning.log"))
	if !strings.Contains(warning, "slow response") {
		t.Fatalf("warning.log missing WARNING line:\n%s", warning)
	}
	if strings.Contains(warning, "page fetched") {
		t.Fatalf("warning.log must not take INFO lines:\n%s", warning)
	}

	errLog := readFile(t, filepath.Join(dir, "error.log"))
	if errLog != "" {
		t.Fatalf("error.log should be empty, got:\n%s", errLog)
	}

	if !strings.Contains(warning, ":-: Scraper :-: WARNING :-:") {
		t.Fatalf("unexpected line format:\n%s", warning)
	}
}

func TestRotateMovesAndReopens(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := NewMirror(dir, 7)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Close()

	at := time.Now().UTC()
	m.Write(at, "A", store.LevelError, "before rotation")

	if err := m.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	stamp := time.Now().AddDate(0, 0, -1).Format(backupStamp)
	backup := readFile(t, filepath.Join(dir, "error.log."+stamp))
	if !strings.Contains(backup, "before rotation") {
		t.Fatalf("backup missing rotated content:\n%s", backup)
	}

	if got := readFile(t, filepath.Join(dir, "error.log")); got != "" {
		t.Fatalf("expected fresh file after rotation, got:\n%s", got)
	}

	m.Write(at, "A", store.LevelError, "after rotation")
	if got := readFile(t, filepath.Join(dir, "error.log")); !strings.Contains(got, "after rotation") {
		t.Fatalf("writes after rotation lost:\n%s", got)
	}
}

func TestPruneKeepsBoundedBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := NewMirror(dir, 3)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	defer m.Close()

	// Seed more dated backups than the retention count.
	for _, stamp := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
		path := filepath.Join(dir, "all_logs.log."+stamp)
		if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
			t.Fatalf("seed backup: %v", err)
		}
	}

	if err := m.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	count := 0
	oldest := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "all_logs.log.") {
			count++
			if e.Name() == "all_logs.log.2024-01-01" {
				oldest = true
			}
		}
	}
	if count != 3 {
		t.Fatalf("expected 3 retained backups, got %d", count)
	}
	if oldest {
		t.Fatal("expected oldest backup pruned first")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	m, err := NewMirror(t.TempDir(), 7)
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
