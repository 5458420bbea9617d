package nullout

import "os"

// DebugEnabled controls whether verbose debug logging is enabled. It mirrors
// the teacher's MUTAGEN_DEBUG convention, renamed to this project's prefix.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("NULLOUT_DEBUG") == "1"
}
