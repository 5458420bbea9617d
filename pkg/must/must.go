// Package must provides "log and continue" helpers for cleanup paths where a
// failure is worth a warning but shouldn't itself become an error return —
// adapted from the teacher's pkg/must, trimmed to the handful of shapes this
// repository's cleanup paths actually need.
package must

import (
	"io"
	"os"

	"github.com/nullout-io/nullout/pkg/logging"
)

// Close closes c, logging (rather than propagating) any failure, so a close
// failure never masks the real result of the operation that preceded it.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes name, logging rather than propagating any failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}

// Encode calls Encode on e, logging rather than propagating any failure.
// Used when writing an RPC response line fails mid-stream — by that point
// there's no good way to report the failure back to the caller, so it's
// logged to stderr instead.
func Encode(e interface{ Encode(any) error }, value any, logger *logging.Logger) {
	if err := e.Encode(value); err != nil {
		logger.Warnf("unable to encode %v: %s", value, err.Error())
	}
}
