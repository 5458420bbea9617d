package logging

import (
	"log"
	"os"
)

func init() {
	// Standard output is reserved for newline-framed JSON-RPC responses; any
	// stray log line there would corrupt the protocol, so all logging goes
	// to standard error instead.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)
}
