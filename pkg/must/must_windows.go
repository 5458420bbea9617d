//go:build windows

package must

import (
	"github.com/nullout-io/nullout/pkg/logging"
	"golang.org/x/sys/windows"
)

// CloseWindowsHandle closes a raw Win32 handle, logging rather than
// propagating any failure. Used by the identity prober, which deals in raw
// windows.Handle values rather than io.Closer-wrapped os.File objects.
func CloseWindowsHandle(wh windows.Handle, logger *logging.Logger) {
	if err := windows.CloseHandle(wh); err != nil {
		logger.Warnf("unable to close handle %d: %s", wh, err.Error())
	}
}
