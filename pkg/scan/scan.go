//go:build windows

// Package scan walks an allowlisted root looking for Win32-hostile entries:
// reserved device names, trailing dots or spaces, overlong paths, and
// reparse points. It is the only component that creates findings.
package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nullout-io/nullout/pkg/hazards"
	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/nullerrors"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/winidentity"
	"github.com/nullout-io/nullout/pkg/winpath"
)

// DefaultMaxDepth bounds recursion when the caller does not specify one.
const DefaultMaxDepth = 50

// Options configures a single scan.
type Options struct {
	RootID      string
	Recursive   bool
	MaxDepth    int
	IncludeDirs bool
}

// Stats summarizes a completed scan.
type Stats struct {
	Visited              int `json:"visited"`
	Flagged              int `json:"flagged"`
	SkippedReparsePoints int `json:"skippedReparsePoints"`
}

// Result is the outcome of a successful scan.
type Result struct {
	ScanID   string
	RootID   string
	Findings []nullstore.Finding
	Stats    Stats
}

// Run scans opts.RootID for hazardous entries and records every finding in
// store. maxDepth of 0 in opts is treated as DefaultMaxDepth.
func Run(store *nullstore.Store, opts Options, logger *logging.Logger) (Result, error) {
	root, ok := store.Root(opts.RootID)
	if !ok {
		return Result{}, nullerrors.New(nullerrors.ERootNotAllowed, "unknown or not allowlisted root", map[string]any{
			"rootId": opts.RootID,
		})
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	rootAbs, err := filepath.Abs(root.Path)
	if err != nil {
		return Result{}, nullerrors.Wrap(err, nullerrors.EInternal, "unable to resolve root path", nil)
	}

	scanID := store.NewScanID()

	w := &walker{
		store:       store,
		logger:      logger,
		rootID:      opts.RootID,
		scanID:      scanID,
		rootAbs:     rootAbs,
		recursive:   opts.Recursive,
		maxDepth:    maxDepth,
		includeDirs: opts.IncludeDirs,
	}
	w.walk(rootAbs, 0)

	return Result{
		ScanID:   scanID,
		RootID:   opts.RootID,
		Findings: store.ScanFindings(scanID),
		Stats:    w.stats,
	}, nil
}

type walker struct {
	store       *nullstore.Store
	logger      *logging.Logger
	rootID      string
	scanID      string
	rootAbs     string
	recursive   bool
	maxDepth    int
	includeDirs bool
	stats       Stats
}

func (w *walker) walk(dir string, depth int) {
	if depth > w.maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Non-fatal: an inaccessible subtree is silently skipped, exactly as
		// the scan engine in the originating system does.
		return
	}

	for _, entry := range entries {
		w.stats.Visited++

		full := filepath.Join(dir, entry.Name())
		canonical := winpath.ToExtended(full, w.rootAbs)
		isReparse := winidentity.IsReparsePoint(canonical)
		isDir := entry.IsDir()

		if isReparse {
			w.stats.SkippedReparsePoints++
			w.record(full, canonical, entry.Name(), isDir, true)
			continue
		}

		if isDir && !w.includeDirs {
			if w.recursive {
				w.walk(full, depth+1)
			}
			continue
		}

		entryHazards := hazards.Classify(entry.Name(), len(canonical), false)
		if len(entryHazards) > 0 {
			w.record(full, canonical, entry.Name(), isDir, false)
		}

		if w.recursive && isDir {
			w.walk(full, depth+1)
		}
	}
}

func (w *walker) record(full, canonical, name string, isDir, isReparse bool) {
	entryHazards := hazards.Classify(name, len(canonical), isReparse)

	rel, err := filepath.Rel(w.rootAbs, full)
	if err != nil {
		rel = full
	}

	base, extension := hazards.ParseBasename(name)

	entryType := nullstore.EntryFile
	if isDir {
		entryType = nullstore.EntryDir
	}

	var identity *nullstore.Identity
	if id, err := winidentity.Probe(canonical, w.logger); err == nil {
		identity = &nullstore.Identity{
			VolumeSerial:       id.VolumeSerial,
			FileID:             id.FileID,
			FingerprintVersion: 1,
		}
	}

	storeHazards := make([]nullstore.Hazard, 0, len(entryHazards))
	for _, h := range entryHazards {
		storeHazards = append(storeHazards, nullstore.Hazard{
			Code:       string(h.Code),
			Severity:   string(h.Severity),
			Confidence: string(h.Confidence),
		})
	}

	finding := nullstore.Finding{
		FindingID:     w.store.NewFindingID(),
		RootID:        w.rootID,
		ScanID:        w.scanID,
		RelativePath:  rel,
		ObservedPath:  full,
		CanonicalPath: canonical,
		EntryType:     entryType,
		Name:          name,
		BaseName:      base,
		Extension:     extension,
		Hazards:       storeHazards,
		Evidence: nullstore.Evidence{
			Identity: identity,
			FS: nullstore.FSEvidence{
				IsDirectory:    isDir,
				IsReparsePoint: isReparse,
			},
			Win32: nullstore.Win32Evidence{
				HasTrailingDotOrSpace: hazards.HasTrailingDotOrSpace(name),
				ExceedsMaxPathLegacy:  len(canonical) > 260,
				IsUNCPath:             strings.HasPrefix(full, `\\`),
			},
		},
	}

	w.store.PutFinding(finding)
	w.stats.Flagged++
}
