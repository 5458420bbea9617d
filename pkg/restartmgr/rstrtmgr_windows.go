//go:build windows

package restartmgr

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// rstrtmgr.dll is not wrapped by golang.org/x/sys/windows, so its four
// entry points are bound directly through NewLazySystemDLL/NewProc and
// called with raw syscall.Syscall* calls.
var (
	rstrtmgrDLL = windows.NewLazySystemDLL("rstrtmgr.dll")

	procRmStartSession       = rstrtmgrDLL.NewProc("RmStartSession")
	procRmRegisterResources  = rstrtmgrDLL.NewProc("RmRegisterResources")
	procRmGetList            = rstrtmgrDLL.NewProc("RmGetList")
	procRmEndSession         = rstrtmgrDLL.NewProc("RmEndSession")
)

const (
	cchRMSessionKey  = 33
	cchRMMaxAppName  = 255
	cchRMMaxSvcName  = 63

	errorMoreData = 234
	errorSuccess  = 0
)

// rmUniqueProcess mirrors the Win32 RM_UNIQUE_PROCESS structure.
type rmUniqueProcess struct {
	ProcessID        uint32
	ProcessStartTime windows.Filetime
}

// rmProcessInfo mirrors the Win32 RM_PROCESS_INFO structure.
type rmProcessInfo struct {
	Process              rmUniqueProcess
	StrAppName           [cchRMMaxAppName + 1]uint16
	StrServiceShortName  [cchRMMaxSvcName + 1]uint16
	ApplicationType      uint32
	AppStatus            uint32
	TSSessionID          uint32
	BRestartable         int32
}

// available reports whether rstrtmgr.dll's entry points resolved. Systems
// without Restart Manager (vanishingly rare, but the original handles it)
// report this as false rather than panicking.
func available() bool {
	return rstrtmgrDLL.Load() == nil &&
		procRmStartSession.Find() == nil &&
		procRmRegisterResources.Find() == nil &&
		procRmGetList.Find() == nil &&
		procRmEndSession.Find() == nil
}

func rmStartSession(sessionHandle *uint32, sessionKey *uint16) uint32 {
	r1, _, _ := syscall.Syscall(procRmStartSession.Addr(), 3,
		uintptr(unsafe.Pointer(sessionHandle)),
		0,
		uintptr(unsafe.Pointer(sessionKey)),
	)
	return uint32(r1)
}

func rmRegisterResources(sessionHandle uint32, fileName *uint16) uint32 {
	files := [1]*uint16{fileName}
	r1, _, _ := syscall.Syscall9(procRmRegisterResources.Addr(), 7,
		uintptr(sessionHandle),
		1,
		uintptr(unsafe.Pointer(&files[0])),
		0, 0, 0, 0,
		0, 0,
	)
	return uint32(r1)
}

func rmGetList(sessionHandle uint32, procInfoNeeded, procInfo *uint32, processInfo *rmProcessInfo, rebootReasons *uint32) uint32 {
	var processInfoPtr unsafe.Pointer
	if processInfo != nil {
		processInfoPtr = unsafe.Pointer(processInfo)
	}
	r1, _, _ := syscall.Syscall6(procRmGetList.Addr(), 5,
		uintptr(sessionHandle),
		uintptr(unsafe.Pointer(procInfoNeeded)),
		uintptr(unsafe.Pointer(procInfo)),
		uintptr(processInfoPtr),
		uintptr(unsafe.Pointer(rebootReasons)),
		0,
	)
	return uint32(r1)
}

func rmEndSession(sessionHandle uint32) uint32 {
	r1, _, _ := syscall.Syscall(procRmEndSession.Addr(), 1, uintptr(sessionHandle), 0, 0)
	return uint32(r1)
}
