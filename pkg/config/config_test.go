package config

import (
	"os"
	"testing"

	"github.com/nullout-io/nullout/pkg/logging"
)

func TestTokenSecretMissing(t *testing.T) {
	t.Setenv(tokenSecretEnvVar, "")
	if _, err := TokenSecret(); err == nil {
		t.Error("expected missing token secret to fail closed")
	}
}

func TestTokenSecretPresent(t *testing.T) {
	t.Setenv(tokenSecretEnvVar, "a-real-secret")
	secret, err := TokenSecret()
	if err != nil {
		t.Fatal(err)
	}
	if string(secret) != "a-real-secret" {
		t.Errorf("unexpected secret: %s", secret)
	}
}

func TestLoadRootsMissing(t *testing.T) {
	t.Setenv(rootsEnvVar, "")
	if _, err := LoadRoots(logging.RootLogger); err == nil {
		t.Error("expected missing roots to fail closed")
	}
}

func TestLoadRootsInvalidPath(t *testing.T) {
	t.Setenv(rootsEnvVar, "/this/does/not/exist")
	if _, err := LoadRoots(logging.RootLogger); err == nil {
		t.Error("expected nonexistent root to fail closed")
	}
}

func TestLoadRootsValid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(rootsEnvVar, dir)

	roots, err := LoadRoots(logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].RootID != "root_0" {
		t.Errorf("unexpected roots: %+v", roots)
	}
}

func TestLoadRootsMultiple(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	t.Setenv(rootsEnvVar, a+";"+b)

	roots, err := LoadRoots(logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].RootID != "root_0" || roots[1].RootID != "root_1" {
		t.Errorf("unexpected root ids: %+v", roots)
	}
}

func TestLoadKnobsDefaultsWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	knobs, err := LoadKnobs()
	if err != nil {
		t.Fatal(err)
	}
	if knobs != DefaultKnobs() {
		t.Errorf("expected default knobs, got %+v", knobs)
	}
}
