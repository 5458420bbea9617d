// Package fixtures recreates the hazardous-name fixtures used for manual
// shipcheck testing: a reserved-device-basename file, an empty directory
// with a trailing dot, and a non-empty directory with a trailing space.
// This is test-fixture tooling, out of scope for the delete-safety pipeline
// itself; it carries no hazard-gating logic of its own.
package fixtures

import (
	"os"

	"github.com/nullout-io/nullout/pkg/winpath"
)

// Created describes one fixture entry that Create successfully wrote.
type Created struct {
	Name string
	Note string
}

// Create populates root (which must already exist) with the three
// hazardous fixtures, addressing each one through the extended path
// namespace so Win32 name normalization cannot silently rewrite it away.
func Create(root string) ([]Created, error) {
	ext := winpath.ToExtended(root, root)

	var created []Created

	nulPath := ext + `\NUL.txt`
	if err := os.WriteFile(nulPath, []byte("shipcheck fixture"), 0o644); err != nil {
		return created, err
	}
	created = append(created, Created{Name: "NUL.txt", Note: "reserved device name"})

	dotDir := ext + `\emptydir.`
	if err := os.MkdirAll(dotDir, 0o755); err != nil {
		return created, err
	}
	created = append(created, Created{Name: "emptydir.", Note: "trailing dot, empty"})

	spaceDir := ext + `\notempty `
	if err := os.MkdirAll(spaceDir, 0o755); err != nil {
		return created, err
	}
	if err := os.WriteFile(spaceDir+`\child.txt`, []byte("x"), 0o644); err != nil {
		return created, err
	}
	created = append(created, Created{Name: "notempty ", Note: "trailing space, non-empty"})

	return created, nil
}
