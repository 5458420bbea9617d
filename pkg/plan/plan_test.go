package plan

import (
	"testing"

	"github.com/nullout-io/nullout/pkg/nullstore"
)

func TestCreateRejectsNonDeleteAction(t *testing.T) {
	store := nullstore.New(nil)
	if _, err := Create(store, nil, []string{"RENAME"}, []byte("secret")); err == nil {
		t.Error("expected non-DELETE action to be rejected")
	}
}

func TestCreateFailsAtomicallyOnUnknownFinding(t *testing.T) {
	store := nullstore.New(nil)
	finding := nullstore.Finding{FindingID: store.NewFindingID(), ScanID: store.NewScanID()}
	store.PutFinding(finding)

	_, err := Create(store, []string{finding.FindingID, "fnd_missing"}, []string{"DELETE"}, []byte("secret"))
	if err == nil {
		t.Error("expected plan to fail when any finding id is unknown")
	}
}

func TestCreateMintsTokenPerFinding(t *testing.T) {
	store := nullstore.New(nil)
	finding := nullstore.Finding{
		FindingID: store.NewFindingID(),
		ScanID:    store.NewScanID(),
		RootID:    "root_0",
		Evidence: nullstore.Evidence{
			Identity: &nullstore.Identity{VolumeSerial: "0x1", FileID: "0x2", FingerprintVersion: 1},
		},
	}
	store.PutFinding(finding)

	result, err := Create(store, []string{finding.FindingID}, []string{"DELETE"}, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	entry := result.Entries[0]
	if entry.ConfirmToken == "" {
		t.Error("expected a non-empty confirm token")
	}
	if entry.Bindings["volumeSerial"] != "0x1" || entry.Bindings["fileId"] != "0x2" {
		t.Errorf("unexpected bindings: %+v", entry.Bindings)
	}
}
