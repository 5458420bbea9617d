//go:build windows

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/nullstore"
)

func newTestStore(t *testing.T, dir string) *nullstore.Store {
	t.Helper()
	return nullstore.New([]nullstore.Root{{RootID: "root_0", DisplayName: "root", Path: dir}})
}

func TestRunUnknownRoot(t *testing.T) {
	store := nullstore.New(nil)
	if _, err := Run(store, Options{RootID: "root_missing"}, logging.RootLogger); err == nil {
		t.Error("expected unknown root to fail")
	}
}

func TestRunPlainNamesNotFlagged(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	store := newTestStore(t, dir)
	result, err := Run(store, Options{RootID: "root_0", Recursive: true, IncludeDirs: true}, logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.Visited != 2 {
		t.Errorf("expected 2 visited entries, got %d", result.Stats.Visited)
	}
	// README.txt and an ordinary subdirectory carry no hazards on their own.
	if result.Stats.Flagged != 0 {
		t.Errorf("expected no flagged entries for plain names, got %d", result.Stats.Flagged)
	}
}

func TestRunSkipsDirsWhenNotIncluded(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "child", "inner.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newTestStore(t, dir)
	result, err := Run(store, Options{RootID: "root_0", Recursive: true, IncludeDirs: false}, logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}

	// Both "child" and "child/inner.txt" are visited even though the
	// directory itself is never recorded as a finding.
	if result.Stats.Visited != 2 {
		t.Errorf("expected 2 visited entries, got %d", result.Stats.Visited)
	}
}

func TestRunNonRecursiveStopsAtTopLevel(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "child"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "child", "inner.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newTestStore(t, dir)
	result, err := Run(store, Options{RootID: "root_0", Recursive: false, IncludeDirs: true}, logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.Visited != 1 {
		t.Errorf("expected only the top-level entry to be visited, got %d", result.Stats.Visited)
	}
}
