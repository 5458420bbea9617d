//go:build windows

// Command nullout runs the NullOut remediation service: a line-delimited
// JSON-RPC tool service over stdin/stdout that finds and safely deletes
// filesystem entries whose names are hostile to the Win32 path layer.
package main

import (
	"github.com/nullout-io/nullout/pkg/cmd"
)

func main() {
	if err := cmd.NewNulloutCommand().Execute(); err != nil {
		// Cobra has already printed usage/error information in this case.
		cmd.Fatal(err)
	}
}
