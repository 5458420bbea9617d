// Package nullstore holds the in-memory finding and root allowlist state
// shared by every component downstream of the scan engine. The original
// implementation minted ids off a module-level mutable global; here the
// store itself is the single collaborator every caller is handed
// explicitly, and id minting is one of its methods.
package nullstore

import (
	"sync"

	"github.com/nullout-io/nullout/pkg/encoding"
)

// EntryType distinguishes files from directories in a Finding.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// Identity is the (volume serial, file id) pair captured for a finding at
// scan time. It is the sole anti-TOCTOU anchor: every destructive or
// attribution path must re-derive it live and compare against this value,
// never refresh it in place.
type Identity struct {
	VolumeSerial       string `json:"volumeSerial"`
	FileID             string `json:"fileId"`
	FingerprintVersion int    `json:"fingerprintVersion"`
}

// Hazard is the storage-layer mirror of hazards.Hazard, kept here rather
// than imported directly so the store has no compile-time dependency on the
// classifier package.
type Hazard struct {
	Code       string `json:"code"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence"`
}

// FSEvidence and Win32Evidence record the descriptive flags captured for a
// finding at scan time, independent of which hazards they triggered: FS
// holds plain filesystem-entry facts, Win32 holds facts specific to the
// Win32 path layer's quirks.
type Evidence struct {
	Identity *Identity     `json:"identity"`
	FS       FSEvidence    `json:"fs"`
	Win32    Win32Evidence `json:"win32"`
}

type FSEvidence struct {
	IsDirectory    bool `json:"isDirectory"`
	IsReparsePoint bool `json:"isReparsePoint"`
}

type Win32Evidence struct {
	HasTrailingDotOrSpace bool `json:"hasTrailingDotOrSpace"`
	ExceedsMaxPathLegacy  bool `json:"exceedsMaxPathLegacy"`
	IsUNCPath             bool `json:"isUncPath"`
}

// Finding is immutable once created: the scan engine is the only writer,
// and every other component only reads.
type Finding struct {
	FindingID string `json:"findingId"`
	RootID    string `json:"rootId"`
	ScanID    string `json:"scanId"`

	RelativePath  string `json:"relativePath"`
	ObservedPath  string `json:"observedPath"`
	CanonicalPath string `json:"canonicalPath"`

	EntryType EntryType `json:"entryType"`

	Name      string `json:"name"`
	BaseName  string `json:"baseName"`
	Extension string `json:"extension"`

	Hazards  []Hazard `json:"hazards"`
	Evidence Evidence `json:"evidence"`
}

// Root is an allowlisted absolute directory that scans may be rooted at.
type Root struct {
	RootID      string `json:"rootId"`
	DisplayName string `json:"displayName"`
	Path        string `json:"path"`
}

// Store holds every root and finding known to the running process. It is
// safe for concurrent use: the specification permits a strictly serial
// dispatcher, where no locking would be required, but a mutex here costs
// nothing and removes the assumption from the rest of the codebase.
type Store struct {
	mu sync.RWMutex

	roots    map[string]Root
	findings map[string]Finding
	scans    map[string][]string
}

// New constructs an empty Store seeded with the given allowlisted roots.
func New(roots []Root) *Store {
	byID := make(map[string]Root, len(roots))
	for _, root := range roots {
		byID[root.RootID] = root
	}
	return &Store{
		roots:    byID,
		findings: make(map[string]Finding),
		scans:    make(map[string][]string),
	}
}

// NewFindingID mints a fresh, opaque, monotone finding id.
func (s *Store) NewFindingID() string {
	return encoding.NewID("fnd")
}

// NewScanID mints a fresh, opaque, monotone scan id.
func (s *Store) NewScanID() string {
	return encoding.NewID("scan")
}

// Roots returns every allowlisted root, in an unspecified order.
func (s *Store) Roots() []Root {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roots := make([]Root, 0, len(s.roots))
	for _, root := range s.roots {
		roots = append(roots, root)
	}
	return roots
}

// Root looks up a root by id.
func (s *Store) Root(rootID string) (Root, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	root, ok := s.roots[rootID]
	return root, ok
}

// PutFinding records a newly scanned finding and associates it with its
// scan. Findings are never mutated after this call.
func (s *Store) PutFinding(finding Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[finding.FindingID] = finding
	s.scans[finding.ScanID] = append(s.scans[finding.ScanID], finding.FindingID)
}

// Finding looks up a finding by id.
func (s *Store) Finding(findingID string) (Finding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	finding, ok := s.findings[findingID]
	return finding, ok
}

// ScanFindings returns the findings recorded for a given scan, in the order
// they were emitted.
func (s *Store) ScanFindings(scanID string) []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.scans[scanID]
	findings := make([]Finding, 0, len(ids))
	for _, id := range ids {
		if finding, ok := s.findings[id]; ok {
			findings = append(findings, finding)
		}
	}
	return findings
}
