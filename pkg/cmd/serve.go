//go:build windows

package cmd

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nullout-io/nullout/pkg/config"
	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/nullstore"
	"github.com/nullout-io/nullout/pkg/rpcserver"
	"github.com/nullout-io/nullout/pkg/token"
)

func serveMain(command *cobra.Command, arguments []string) error {
	if err := config.LoadDotEnv(); err != nil {
		Warning(err.Error())
	}

	knobs, err := config.LoadKnobs()
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	level, ok := logging.NameToLevel(knobs.LogLevel)
	if !ok {
		level = logging.LevelInfo
	}
	logger := logging.NewRootLogger(level)

	if knobs.TokenTTLSec > 0 {
		token.TTL = time.Duration(knobs.TokenTTLSec) * time.Second
	}

	roots, err := config.LoadRoots(logger)
	if err != nil {
		return errors.Wrap(err, "unable to load allowlisted roots")
	}

	secret, err := config.TokenSecret()
	if err != nil {
		return errors.Wrap(err, "unable to load token secret")
	}

	store := nullstore.New(roots)
	server := rpcserver.New(store, secret, knobs, logger)

	logger.Infof("nullout serving %d allowlisted root(s) over stdio", len(roots))
	return server.Serve(os.Stdin, os.Stdout)
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the line-delimited JSON-RPC tool service on stdin/stdout",
	Run:   Mainify(serveMain),
}
