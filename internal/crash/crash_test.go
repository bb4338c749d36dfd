package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gridshell/internal/domain"
	"gridshell/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "GridShell Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportCreatesFileInWorkspace(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	path, err := writeReport(store, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.Contains(path, filepath.Join(store.Root(), storage.IndexDirName, "crash")) {
		t.Fatalf("expected crash report under workspace crash dir, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

func TestSnapshotLayoutsCopiesCurrentLayouts(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	layout := domain.Layout{ID: "l1", Name: "Main", Tabs: []domain.Tab{{ID: "t1", Name: "Overview", Type: domain.TabDynamic}}}
	if err := store.Put(storage.CurrentLayoutKey("u1"), layout); err != nil {
		t.Fatalf("put: %v", err)
	}
	// unrelated records stay out of the snapshot
	if err := store.Put(storage.ThemeKey(), "dark"); err != nil {
		t.Fatalf("put theme: %v", err)
	}

	path, err := snapshotLayouts(store)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, storage.CurrentLayoutKey("u1")) || !strings.Contains(s, `"l1"`) {
		t.Fatalf("snapshot missing layout record: %s", s)
	}
	if strings.Contains(s, storage.ThemeKey()) {
		t.Fatalf("snapshot picked up unrelated record: %s", s)
	}
}
