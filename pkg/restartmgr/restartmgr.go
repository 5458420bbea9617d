//go:build windows

// Package restartmgr provides read-only process attribution for a
// filesystem path via the Windows Restart Manager (rstrtmgr.dll). It never
// kills, restarts, or signals any process it discovers; it only reports
// who holds a handle.
package restartmgr

import (
	"strings"
	"syscall"

	"github.com/nullout-io/nullout/pkg/hazards"
	"github.com/nullout-io/nullout/pkg/nullerrors"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/winidentity"
	"github.com/nullout-io/nullout/pkg/winpath"
)

// appTypeNames maps the ApplicationType codes rstrtmgr.dll reports to the
// names this system's API surface uses.
var appTypeNames = map[uint32]string{
	0: "unknown",
	1: "main_window",
	2: "other_window",
	3: "service",
	4: "explorer",
	5: "console",
	6: "critical",
}

// Process describes one process holding a handle on a queried path.
type Process struct {
	PID              uint32 `json:"pid"`
	AppName          string `json:"appName"`
	ServiceShortName string `json:"serviceShortName"`
	Type             string `json:"type"`
	SessionID        uint32 `json:"sessionId"`
	Restartable      bool   `json:"restartable"`
	Source           string `json:"source,omitempty"`
}

// Available reports whether rstrtmgr.dll resolved on this system.
func Available() bool {
	return available()
}

// QueryLockers asks Restart Manager which processes hold a handle on path,
// a plain (non-extended) Win32 path. RM works best against ordinary paths;
// callers needing the extended namespace should fall back through
// WhoIsUsing's normalized-path hint rather than passing an extended path
// here directly.
func QueryLockers(path string) ([]Process, error) {
	if !available() {
		return nil, errNotAvailable
	}

	var sessionHandle uint32
	sessionKeyBuf := make([]uint16, cchRMSessionKey)

	if rc := rmStartSession(&sessionHandle, &sessionKeyBuf[0]); rc != errorSuccess {
		return nil, syscall.Errno(rc)
	}
	defer rmEndSession(sessionHandle)

	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	if rc := rmRegisterResources(sessionHandle, pathPtr); rc != errorSuccess {
		return nil, syscall.Errno(rc)
	}

	var needed, count, rebootReasons uint32
	rc := rmGetList(sessionHandle, &needed, &count, nil, &rebootReasons)
	if rc == errorSuccess && needed == 0 {
		return nil, nil
	}
	if rc != errorSuccess && rc != errorMoreData {
		return nil, syscall.Errno(rc)
	}

	bufSize := needed
	if bufSize == 0 {
		bufSize = 1
	}
	buffer := make([]rmProcessInfo, bufSize)
	count = bufSize

	if rc := rmGetList(sessionHandle, &needed, &count, &buffer[0], &rebootReasons); rc != errorSuccess {
		return nil, syscall.Errno(rc)
	}

	processes := make([]Process, 0, count)
	for i := uint32(0); i < count; i++ {
		info := buffer[i]
		processes = append(processes, Process{
			PID:              info.Process.ProcessID,
			AppName:          syscall.UTF16ToString(info.StrAppName[:]),
			ServiceShortName: syscall.UTF16ToString(info.StrServiceShortName[:]),
			Type:             appTypeName(info.ApplicationType),
			SessionID:        info.TSSessionID,
			Restartable:      info.BRestartable != 0,
		})
	}
	return processes, nil
}

func appTypeName(code uint32) string {
	if name, ok := appTypeNames[code]; ok {
		return name
	}
	return "unknown_" + itoa(code)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

var errNotAvailable = syscall.Errno(0x1F) // ERROR_GEN_FAILURE, closest stand-in for "DLL unavailable"

// Result is the outcome of a who-is-using attribution query.
type Result struct {
	FindingID   string    `json:"findingId"`
	Processes   []Process `json:"processes"`
	Confidence  string    `json:"confidence"`
	Limitations []string  `json:"limitations"`
}

// WhoIsUsing applies gates 1, 4, 5, and 6 of the delete engine (finding
// lookup, root confinement, reparse deny, live identity match — no token
// and no empty-check) before querying Restart Manager, so attribution
// cannot be used as an information-disclosure oracle for paths outside a
// root or for reparse points.
func WhoIsUsing(store *nullstore.Store, findingID string) (Result, error) {
	finding, ok := store.Finding(findingID)
	if !ok {
		return Result{}, nullerrors.New(nullerrors.ENotFound, "finding not found", map[string]any{"findingId": findingID})
	}

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

	if winidentity.IsReparsePoint(finding.CanonicalPath) {
		return Result{}, nullerrors.New(nullerrors.EReparsePolicyBlocked, "reparse points are blocked by policy (deny_all)", map[string]any{
			"target": finding.ObservedPath,
		})
	}

	live, err := winidentity.Probe(finding.CanonicalPath, nil)
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
			"target":   finding.ObservedPath,
			"expected": map[string]string{"volumeSerial": expectedSerial, "fileId": expectedFileID},
			"observed": map[string]string{"volumeSerial": live.VolumeSerial, "fileId": live.FileID},
		})
	}

	if !Available() {
		return Result{
			FindingID:   findingID,
			Processes:   []Process{},
			Confidence:  "low",
			Limitations: []string{"Restart Manager (rstrtmgr.dll) is not available on this system."},
		}, nil
	}

	var limitations []string
	if hazards.HasTrailingDotOrSpace(finding.Name) {
		limitations = append(limitations, "Target has trailing dot/space; Win32 path normalization may prevent "+
			"Restart Manager from identifying all lockers.")
	}

	processes, err := QueryLockers(finding.ObservedPath)
	if err != nil {
		return Result{}, nullerrors.Wrap(err, nullerrors.EInternal, "restart manager query failed", map[string]any{"target": finding.ObservedPath})
	}

	if len(processes) == 0 && len(limitations) > 0 {
		normalized := strings.TrimRight(finding.ObservedPath, ". ")
		if normalized != finding.ObservedPath {
			if hintProcesses, hintErr := QueryLockers(normalized); hintErr == nil && len(hintProcesses) > 0 {
				for i := range hintProcesses {
					hintProcesses[i].Source = "normalized_path_hint"
				}
				processes = hintProcesses
				limitations = append(limitations, "Results are from a normalized-path hint query (trailing "+
					"chars stripped). These processes may not hold the exact on-disk entry.")
			}
		}
	}

	var confidence string
	switch {
	case len(processes) > 0 && len(limitations) == 0:
		confidence = "high"
	case len(processes) > 0 && len(limitations) > 0:
		confidence = "medium"
	case len(processes) == 0 && len(limitations) == 0:
		confidence = "medium"
	default:
		confidence = "low"
	}

	if processes == nil {
		processes = []Process{}
	}
	if limitations == nil {
		limitations = []string{}
	}

	return Result{
		FindingID:   findingID,
		Processes:   processes,
		Confidence:  confidence,
		Limitations: limitations,
	}, nil
}
