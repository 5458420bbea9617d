//go:build windows

package deleteengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/token"
	"github.com/nullout-io/nullout/pkg/winidentity"
	"github.com/nullout-io/nullout/pkg/winpath"
)

const testSecret = "test-secret"

func buildFinding(t *testing.T, store *nullstore.Store, root nullstore.Root, name string, isDir bool) nullstore.Finding {
	t.Helper()

	full := filepath.Join(root.Path, name)
	// Create through the extended path so a trailing dot or space in name
	// survives instead of being stripped by Win32 normalization.
	canonical := winpath.ToExtended(full, root.Path)
	if isDir {
		if err := os.Mkdir(canonical, 0o755); err != nil {
			t.Fatal(err)
		}
	} else {
		if err := os.WriteFile(canonical, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	identity, err := winidentity.Probe(canonical, logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}

	entryType := nullstore.EntryFile
	if isDir {
		entryType = nullstore.EntryDir
	}

	finding := nullstore.Finding{
		FindingID:     store.NewFindingID(),
		RootID:        root.RootID,
		ScanID:        store.NewScanID(),
		ObservedPath:  full,
		CanonicalPath: canonical,
		EntryType:     entryType,
		Name:          name,
		Evidence: nullstore.Evidence{
			Identity: &nullstore.Identity{VolumeSerial: identity.VolumeSerial, FileID: identity.FileID, FingerprintVersion: 1},
		},
	}
	store.PutFinding(finding)
	return finding
}

func mintFor(t *testing.T, finding nullstore.Finding) string {
	t.Helper()
	raw, err := token.Mint(token.Payload{
		FindingID:     finding.FindingID,
		RootID:        finding.RootID,
		ScanID:        finding.ScanID,
		VolumeSerial:  finding.Evidence.Identity.VolumeSerial,
		FileID:        finding.Evidence.Identity.FileID,
		Strategy:      token.Strategy,
		ReparsePolicy: token.ReparsePolicy,
		Exp:           time.Now().Add(token.TTL).Unix(),
	}, []byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDeleteFileSucceeds(t *testing.T) {
	dir := t.TempDir()
	root := nullstore.Root{RootID: "root_0", DisplayName: "root", Path: dir}
	store := nullstore.New([]nullstore.Root{root})

	finding := buildFinding(t, store, root, "target.txt", false)
	raw := mintFor(t, finding)

	result, err := Delete(store, finding.FindingID, raw, []byte(testSecret), logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Deleted {
		t.Error("expected deleted=true")
	}
	if _, err := os.Stat(finding.ObservedPath); !os.IsNotExist(err) {
		t.Error("expected file to be removed from disk")
	}
}

func TestDeleteEmptyDirSucceeds(t *testing.T) {
	dir := t.TempDir()
	root := nullstore.Root{RootID: "root_0", DisplayName: "root", Path: dir}
	store := nullstore.New([]nullstore.Root{root})

	finding := buildFinding(t, store, root, "emptydir.", true)
	raw := mintFor(t, finding)

	result, err := Delete(store, finding.FindingID, raw, []byte(testSecret), logging.RootLogger)
	if err != nil {
		t.Fatal(err)
	}
	if result.EntryType != nullstore.EntryDir {
		t.Errorf("expected entryType dir, got %s", result.EntryType)
	}
}

func TestDeleteNonEmptyDirFails(t *testing.T) {
	dir := t.TempDir()
	root := nullstore.Root{RootID: "root_0", DisplayName: "root", Path: dir}
	store := nullstore.New([]nullstore.Root{root})

	finding := buildFinding(t, store, root, "notempty ", true)
	if err := os.WriteFile(filepath.Join(finding.ObservedPath, "child.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	raw := mintFor(t, finding)

	if _, err := Delete(store, finding.FindingID, raw, []byte(testSecret), logging.RootLogger); err == nil {
		t.Error("expected delete of non-empty directory to fail")
	}
}

func TestDeleteUnknownFindingFails(t *testing.T) {
	store := nullstore.New(nil)
	if _, err := Delete(store, "fnd_missing", "irrelevant", []byte(testSecret), logging.RootLogger); err == nil {
		t.Error("expected unknown finding to fail")
	}
}

func TestDeleteWrongSecretFails(t *testing.T) {
	dir := t.TempDir()
	root := nullstore.Root{RootID: "root_0", DisplayName: "root", Path: dir}
	store := nullstore.New([]nullstore.Root{root})

	finding := buildFinding(t, store, root, "target.txt", false)
	raw := mintFor(t, finding)

	if _, err := Delete(store, finding.FindingID, raw, []byte("wrong-secret"), logging.RootLogger); err == nil {
		t.Error("expected mismatched secret to fail token verification")
	}
}

func TestDeleteChangedSinceScanFails(t *testing.T) {
	dir := t.TempDir()
	root := nullstore.Root{RootID: "root_0", DisplayName: "root", Path: dir}
	store := nullstore.New([]nullstore.Root{root})

	finding := buildFinding(t, store, root, "target.txt", false)
	raw := mintFor(t, finding)

	// Replace the file: the path is the same but the underlying identity
	// changes, which must be caught by the live identity gate.
	if err := os.Remove(finding.ObservedPath); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(finding.ObservedPath, []byte("different"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Delete(store, finding.FindingID, raw, []byte(testSecret), logging.RootLogger); err == nil {
		t.Error("expected identity mismatch to fail the delete")
	}
}
