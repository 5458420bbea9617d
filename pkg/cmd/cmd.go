//go:build windows

// Package cmd assembles the nullout CLI: the "serve" JSON-RPC loop, the
// "fixtures" shipcheck helper, and a "version" subcommand, following the
// teacher's NewMutagenCommand/Mainify structure.
package cmd

import (
	"github.com/spf13/cobra"
)

func rootMain(command *cobra.Command, arguments []string) error {
	// If no subcommand was given, print help information and bail. Arguments
	// can't reach this point on their own (they'd be mistaken for an unknown
	// subcommand and rejected by Cobra), so there's nothing else to check.
	command.Help()
	return nil
}

// NewNulloutCommand constructs the nullout root command with every
// subcommand registered.
func NewNulloutCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "nullout",
		Short: "NullOut finds and safely deletes Win32-hostile filesystem entries.",
		Run:   Mainify(rootMain),
	}

	var rootConfiguration struct {
		help bool
	}
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	// Disable Cobra's alphabetical command sorting so "serve" (the primary
	// entry point) lists first.
	cobra.EnableCommandSorting = false

	// Disable Cobra's use of mousetrap, which enforces console-only launch
	// and breaks when the server is spawned by an orchestrator rather than a
	// human at a terminal.
	cobra.MousetrapHelpText = ""

	rootCommand.AddCommand(
		serveCommand,
		fixturesCommand,
		versionCommand,
	)

	return rootCommand
}
