// Package config loads the operational configuration for a NullOut server
// process: the token signing secret and the allowlisted roots, both
// required and both failing closed when absent, plus a handful of
// non-secret operational knobs that may optionally be overridden from a
// TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nullout-io/nullout/pkg/encoding"
	"github.com/nullout-io/nullout/pkg/logging"
	"github.com/nullout-io/nullout/pkg/nullstore"
)

// rootsEnvVar and tokenSecretEnvVar mirror the original implementation's
// environment variable names.
const (
	rootsEnvVar       = "NULLOUT_ROOTS"
	tokenSecretEnvVar = "NULLOUT_TOKEN_SECRET"
	configPathEnvVar  = "NULLOUT_CONFIG"

	defaultConfigFileName = "nullout.toml"
)

// Knobs holds the non-secret operational settings an operator may override
// via nullout.toml. They are never read from the environment and never
// accept the signing secret, so a leaked config file cannot leak it.
type Knobs struct {
	MaxDepth    int    `toml:"max_depth"`
	TokenTTLSec int    `toml:"token_ttl_seconds"`
	LogLevel    string `toml:"log_level"`
}

// DefaultKnobs returns the knob values used when no TOML file is found.
func DefaultKnobs() Knobs {
	return Knobs{MaxDepth: 50, TokenTTLSec: 300, LogLevel: "info"}
}

// LoadKnobs loads optional operator overrides from nullout.toml, searched
// first in the current working directory and then at $NULLOUT_CONFIG. If
// neither exists, the defaults are returned unchanged.
func LoadKnobs() (Knobs, error) {
	knobs := DefaultKnobs()

	path := defaultConfigFileName
	if _, err := os.Stat(path); err != nil {
		if override := os.Getenv(configPathEnvVar); override != "" {
			path = override
		} else {
			return knobs, nil
		}
	}

	if err := encoding.LoadAndUnmarshalTOML(path, &knobs); err != nil {
		if os.IsNotExist(err) {
			return DefaultKnobs(), nil
		}
		return Knobs{}, fmt.Errorf("unable to load %s: %w", path, err)
	}
	return knobs, nil
}

// LoadDotEnv loads a .env file from the current working directory into the
// process environment, if one is present. Real environment variables always
// take precedence over values from the file. Absence of the file is not an
// error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to load .env file: %w", err)
	}
	return nil
}

// TokenSecret returns the token signing secret from the environment,
// failing closed if it is unset or empty.
func TokenSecret() ([]byte, error) {
	secret := os.Getenv(tokenSecretEnvVar)
	if secret == "" {
		return nil, fmt.Errorf(
			"%s environment variable is required (generate one with a random 32-byte hex value)",
			tokenSecretEnvVar,
		)
	}
	return []byte(secret), nil
}

// LoadRoots loads the allowlisted roots from NULLOUT_ROOTS, a
// semicolon-separated list of absolute directory paths. Each must exist and
// be a directory; the whole load fails closed if the variable is unset or
// resolves to no valid entries. Each accepted root is logged at info level.
func LoadRoots(logger *logging.Logger) ([]nullstore.Root, error) {
	raw := os.Getenv(rootsEnvVar)
	if raw == "" {
		return nil, fmt.Errorf(
			"%s environment variable is required (semicolon-separated absolute directory paths)",
			rootsEnvVar,
		)
	}

	var roots []nullstore.Root
	index := 0
	for _, entry := range strings.Split(raw, ";") {
		path := strings.TrimSpace(entry)
		if path == "" {
			continue
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve root %q: %w", path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("configured root does not exist or is not a directory: %s", absPath)
		}

		rootID := fmt.Sprintf("root_%d", index)
		displayName := filepath.Base(absPath)
		if displayName == "" || displayName == "." || displayName == string(filepath.Separator) {
			displayName = absPath
		}

		root := nullstore.Root{RootID: rootID, DisplayName: displayName, Path: absPath}
		roots = append(roots, root)
		logger.Infof("allowlisted root %s: %s (%s)", root.RootID, root.Path, root.DisplayName)

		index++
	}

	if len(roots) == 0 {
		return nil, fmt.Errorf("%s is set but contains no valid paths", rootsEnvVar)
	}

	return roots, nil
}
