//go:build windows

// Package winidentity opens filesystem entries through the extended path
// namespace to capture the (volume serial, file id) pair that anchors every
// later gate check against the possibility that the entry at a given path
// changed between when it was scanned and when it is acted on.
package winidentity

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/must"
	"github.com/nullout-io/nullout/pkg/nullerrors"
)

// Identity is the (volume serial, file id) pair identifying a concrete
// filesystem entry, independent of the path used to reach it.
type Identity struct {
	// VolumeSerial is an 8-hex-digit, 0x-prefixed, upper-case string formed
	// from the handle's volume serial number.
	VolumeSerial string
	// FileID is a 16-hex-digit, 0x-prefixed, upper-case string formed from
	// the handle's file index, high half first.
	FileID string
}

// Probe opens extendedPath and reads back its (volume serial, file id) pair.
// The handle is opened with full share mode so the probe itself never
// interferes with a concurrent reader, writer, or deleter, and with
// backup-semantics so directories can be opened the same way as files.
func Probe(extendedPath string, logger *logging.Logger) (Identity, error) {
	path16, err := windows.UTF16PtrFromString(extendedPath)
	if err != nil {
		return Identity{}, nullerrors.Wrap(err, nullerrors.EIOError, "unable to convert path to UTF-16", nil)
	}

	handle, err := windows.CreateFile(
		path16,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		if err == windows.ERROR_FILE_NOT_FOUND || err == windows.ERROR_PATH_NOT_FOUND {
			return Identity{}, nullerrors.Wrap(err, nullerrors.ENotFound, "entry not found", nil)
		}
		if err == windows.ERROR_ACCESS_DENIED {
			return Identity{}, nullerrors.Wrap(err, nullerrors.EAccessDenied, "access denied opening entry", nil)
		}
		return Identity{}, nullerrors.Wrap(err, nullerrors.EIOError, "unable to open entry", nil)
	}
	defer must.CloseWindowsHandle(handle, logger)

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(handle, &info); err != nil {
		return Identity{}, nullerrors.Wrap(err, nullerrors.EIOError, "unable to query file information", nil)
	}

	return Identity{
		VolumeSerial: fmt.Sprintf("0x%08X", info.VolumeSerialNumber),
		FileID:       fmt.Sprintf("0x%016X", (uint64(info.FileIndexHigh)<<32)|uint64(info.FileIndexLow)),
	}, nil
}

// IsReparsePoint reports whether the entry at extendedPath carries the
// FILE_ATTRIBUTE_REPARSE_POINT flag. It mirrors GetFileAttributesW's
// fail-safe behavior: any error (including the path not existing) reports
// false rather than propagating, since callers treat "not a reparse point"
// and "unknown" identically for traversal purposes.
func IsReparsePoint(extendedPath string) bool {
	path16, err := windows.UTF16PtrFromString(extendedPath)
	if err != nil {
		return false
	}
	attributes, err := windows.GetFileAttributes(path16)
	if err != nil || attributes == windows.INVALID_FILE_ATTRIBUTES {
		return false
	}
	return attributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
}
