//go:build windows

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nullout-io/nullout/pkg/nullout"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(command *cobra.Command, arguments []string) {
		fmt.Println(nullout.Version)
	},
}
