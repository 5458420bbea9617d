package encoding

import (
	"encoding/binary"
	"sync/atomic"
)

// idCounter is a process-local monotonic counter used to mint opaque ids. It
// starts at 1 so the all-zero byte sequence is never handed out.
var idCounter uint64

// NewID mints an opaque, monotonically increasing id of the form
// "<prefix>_<base62>". It replaces the millisecond-timestamp ids of the
// original implementation, which could collide under rapid successive scans;
// an atomically-incremented counter cannot.
func NewID(prefix string) string {
	value := atomic.AddUint64(&idCounter, 1)
	var buffer [8]byte
	binary.BigEndian.PutUint64(buffer[:], value)

	// Strip leading zero bytes so small counter values don't encode to a
	// needlessly long string, but always leave at least one byte.
	trimmed := buffer[:]
	for len(trimmed) > 1 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}

	return prefix + "_" + EncodeBase62(trimmed)
}
