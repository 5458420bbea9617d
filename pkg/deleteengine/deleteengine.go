//go:build windows

// Package deleteengine implements the destructive delete state machine: a
// fixed sequence of gates, each a distinct terminal error code, that must
// all pass before an entry is unlinked. No retries are performed
// internally; a failure at any gate requires a fresh plan.
package deleteengine

import (
	"os"
	"time"

	"golang.org/x/sys/windows"

	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/nullerrors"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/token"
	"github.com/nullout-io/nullout/pkg/winidentity"
	"github.com/nullout-io/nullout/pkg/winpath"
)

// Telemetry reports operational detail about a successful delete.
type Telemetry struct {
	DurationMs            int64 `json:"durationMs"`
	UsedExtendedNamespace bool  `json:"usedExtendedNamespace"`
}

// Result is the outcome of a successful delete.
type Result struct {
	FindingID string              `json:"findingId"`
	Deleted   bool                `json:"deleted"`
	Strategy  string              `json:"strategy"`
	EntryType nullstore.EntryType `json:"entryType"`
	Telemetry Telemetry           `json:"telemetry"`
	Warnings  []string            `json:"warnings"`
}

// Delete runs every gate in order and, if all pass, unlinks the entry
// described by the finding named findingID.
func Delete(store *nullstore.Store, findingID, confirmToken string, secret []byte, logger *logging.Logger) (Result, error) {
	// Gate 1: finding lookup.
	finding, ok := store.Finding(findingID)
	if !ok {
		return Result{}, nullerrors.New(nullerrors.ENotFound, "finding not found", map[string]any{"findingId": findingID})
	}

	// Gate 2: token verification.
	payload, err := token.Verify(confirmToken, secret)
	if err != nil {
		return Result{}, nullerrors.Wrap(err, nullerrors.EConfirmTokenInvalid, "confirmation token invalid", map[string]any{"findingId": findingID})
	}
	if time.Now().Unix() > payload.Exp {
		return Result{}, nullerrors.New(nullerrors.EConfirmTokenExpired, "confirmation token expired", map[string]any{"findingId": findingID})
	}

	// Gate 3: token-binding match.
	if err := checkBindings(payload, finding); err != nil {
		return Result{}, err
	}

	// Gate 4: root confinement.
	root, ok := store.Root(finding.RootID)
	if !ok {
		return Result{}, nullerrors.New(nullerrors.ERootNotAllowed, "root not allowlisted", map[string]any{"rootId": finding.RootID})
	}
	if !winpath.IsUnderRoot(finding.ObservedPath, root.Path) {
		return Result{}, nullerrors.New(nullerrors.ETraversalRejected, "target escapes allowlisted root", map[string]any{
			"target": finding.ObservedPath,
			"root":   root.Path,
		})
	}

	// Gate 5: reparse deny.
	if winidentity.IsReparsePoint(finding.CanonicalPath) {
		return Result{}, nullerrors.New(nullerrors.EReparsePolicyBlocked, "reparse points are blocked by policy (deny_all)", map[string]any{
			"target": finding.ObservedPath,
		})
	}

	// Gate 6: live identity match.
	live, err := winidentity.Probe(finding.CanonicalPath, logger)
	if err != nil {
		if nullerrors.CodeOf(err) == nullerrors.ENotFound {
			return Result{}, nullerrors.New(nullerrors.ENotFound, "target no longer exists", map[string]any{"target": finding.ObservedPath})
		}
		return Result{}, nullerrors.Wrap(err, nullerrors.EInternal, "failed to open target for identity verification", map[string]any{"target": finding.ObservedPath})
	}
	var expectedSerial, expectedFileID string
	if finding.Evidence.Identity != nil {
		expectedSerial = finding.Evidence.Identity.VolumeSerial
		expectedFileID = finding.Evidence.Identity.FileID
	}
	if live.VolumeSerial != expectedSerial || live.FileID != expectedFileID {
		return Result{}, nullerrors.New(nullerrors.EChangedSinceScan, "target changed since scan", map[string]any{
			"target": finding.ObservedPath,
			"expected": map[string]string{"volumeSerial": expectedSerial, "fileId": expectedFileID},
			"observed": map[string]string{"volumeSerial": live.VolumeSerial, "fileId": live.FileID},
		})
	}

	// Gate 7: empty-only rule for directories.
	if finding.EntryType == nullstore.EntryDir {
		entries, err := os.ReadDir(finding.CanonicalPath)
		if err != nil {
			if os.IsPermission(err) {
				return Result{}, nullerrors.Wrap(err, nullerrors.EAccessDenied, "access denied while checking directory contents", map[string]any{"target": finding.ObservedPath})
			}
			return Result{}, nullerrors.Wrap(err, nullerrors.EInternal, "failed to enumerate directory contents", map[string]any{"target": finding.ObservedPath})
		}
		if len(entries) > 0 {
			return Result{}, nullerrors.New(nullerrors.EDirNotEmpty, "directory is not empty; only empty directories are deleted", map[string]any{"target": finding.ObservedPath})
		}
	}

	// Gate 8: unlink.
	start := time.Now()
	if unlinkErr := os.Remove(finding.CanonicalPath); unlinkErr != nil {
		return Result{}, translateUnlinkError(unlinkErr, finding, findingID)
	}

	return Result{
		FindingID: findingID,
		Deleted:   true,
		Strategy:  token.Strategy,
		EntryType: finding.EntryType,
		Telemetry: Telemetry{
			DurationMs:            time.Since(start).Milliseconds(),
			UsedExtendedNamespace: true,
		},
		Warnings: []string{},
	}, nil
}

func checkBindings(payload token.Payload, finding nullstore.Finding) error {
	var expectedSerial, expectedFileID string
	if finding.Evidence.Identity != nil {
		expectedSerial = finding.Evidence.Identity.VolumeSerial
		expectedFileID = finding.Evidence.Identity.FileID
	}

	mismatch := func(field string) error {
		return nullerrors.New(nullerrors.EConfirmTokenInvalid, "token binding mismatch on '"+field+"'", map[string]any{
			"findingId": finding.FindingID,
		})
	}

	switch {
	case payload.FindingID != finding.FindingID:
		return mismatch("findingId")
	case payload.RootID != finding.RootID:
		return mismatch("rootId")
	case payload.ScanID != finding.ScanID:
		return mismatch("scanId")
	case payload.VolumeSerial != expectedSerial:
		return mismatch("volumeSerial")
	case payload.FileID != expectedFileID:
		return mismatch("fileId")
	case payload.Strategy != token.Strategy:
		return mismatch("strategy")
	case payload.ReparsePolicy != token.ReparsePolicy:
		return mismatch("reparsePolicy")
	}
	return nil
}

// translateUnlinkError maps the OS error from the final unlink into the
// exact error taxonomy the gate sequence promises, including the Win32
// error codes that only a final unlink attempt (rather than an earlier,
// advisory check) can produce.
func translateUnlinkError(err error, finding nullstore.Finding, findingID string) error {
	details := map[string]any{"target": finding.ObservedPath, "strategy": token.Strategy}

	var errno windows.Errno
	if inner, ok := asErrno(err); ok {
		errno = inner
	}

	const (
		errnoIODevice    = windows.Errno(1117) // ERROR_IO_DEVICE
		errnoFileCorrupt = windows.Errno(1392) // ERROR_FILE_CORRUPT
	)

	switch errno {
	case windows.ERROR_SHARING_VIOLATION:
		return nullerrors.Wrap(err, nullerrors.EInUse, "target is in use by another process", details).
			WithNextSteps(nullerrors.NextStep{
				Action: "WHO_IS_USING",
				Tool:   "who_is_using",
				Args:   map[string]any{"findingId": findingID},
			})
	case windows.ERROR_CRC, errnoIODevice, errnoFileCorrupt:
		details["win32LastError"] = int(errno)
		return nullerrors.Wrap(err, nullerrors.EIOError, "i/o error or corruption suspected", details)
	case windows.ERROR_DIR_NOT_EMPTY:
		return nullerrors.Wrap(err, nullerrors.EDirNotEmpty, "directory is not empty", details)
	case windows.ERROR_ACCESS_DENIED:
		return nullerrors.Wrap(err, nullerrors.EAccessDenied, "access denied while deleting target", details)
	}

	if os.IsPermission(err) {
		return nullerrors.Wrap(err, nullerrors.EAccessDenied, "access denied while deleting target", details)
	}

	return nullerrors.Wrap(err, nullerrors.EInternal, "delete failed", details)
}

func asErrno(err error) (windows.Errno, bool) {
	for err != nil {
		if errno, ok := err.(windows.Errno); ok {
			return errno, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = unwrapper.Unwrap()
	}
	return 0, false
}
