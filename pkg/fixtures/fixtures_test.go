package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nullout-io/nullout/pkg/winpath"
)

func TestCreatePopulatesAllThreeFixtures(t *testing.T) {
	dir := t.TempDir()

	created, err := Create(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 fixtures created, got %d", len(created))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in %s, got %d", dir, len(entries))
	}

	if _, err := os.Stat(winpath.ToExtended(filepath.Join(dir, "emptydir."), dir)); err != nil {
		t.Errorf("expected trailing-dot directory to exist: %v", err)
	}
}
