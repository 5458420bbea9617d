//go:build windows

package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nullout-io/nullout/pkg/fixtures"
)

func fixturesMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("usage: nullout fixtures <root-dir>")
	}

	created, err := fixtures.Create(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to create fixtures")
	}

	for _, c := range created {
		fmt.Printf("  created: %s (%s)\n", c.Name, c.Note)
	}
	return nil
}

var fixturesCommand = &cobra.Command{
	Use:   "fixtures <root-dir>",
	Short: "Create hazardous-name fixtures in an existing directory for manual shipcheck testing",
	Run:   Mainify(fixturesMain),
}
