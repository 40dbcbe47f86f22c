package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glider-chain/glider/params"
)

// Config holds all configuration for a gliderd node.
type Config struct {
	// DataDir is the root directory for all data storage.
	DataDir string

	// Name is a human-readable node identifier (used in logs).
	Name string

	// Network selects the genesis profile (dev, main).
	Network string

	// NetworkID is the numeric network identifier.
	NetworkID uint64

	// Validators is the number of local proposer keys to generate and
	// fund at genesis. A single-validator network still runs the full
	// tournament-elected-champion lifecycle; it simply has one bye
	// pairing every height.
	Validators int

	// GenesisAllocation is the balance credited to each generated
	// validator address at genesis, in native base units.
	GenesisAllocation uint64

	// LogLevel controls log verbosity (debug, info, warn, error).
	LogLevel string

	// Verbosity controls numeric log level (0=silent, 1=error, 2=warn,
	// 3=info, 4=debug, 5=trace). When set, overrides LogLevel.
	Verbosity int

	// Metrics enables the metrics collection subsystem.
	Metrics bool
}

// defaultDataDir returns the platform-specific default data directory.
// Falls back to ".glider" in the current directory if the home directory
// cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".glider"
	}
	return filepath.Join(home, ".glider")
}

// DefaultConfig returns a Config with sensible defaults: a single
// development validator funded from the dev genesis.
func DefaultConfig() Config {
	return Config{
		DataDir:           defaultDataDir(),
		Name:              "gliderd",
		Network:           "dev",
		NetworkID:         1337,
		Validators:        1,
		GenesisAllocation: 1_000_000_000_000,
		LogLevel:          "info",
		Verbosity:         3,
		Metrics:           false,
	}
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if c.Validators < 1 {
		return fmt.Errorf("config: validators must be >= 1, got %d", c.Validators)
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("config: verbosity must be 0-5, got %d", c.Verbosity)
	}
	switch c.Network {
	case "dev", "main":
	default:
		return fmt.Errorf("config: unknown network %q", c.Network)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// Genesis returns the params.Genesis this config's Network selects: the
// reduced-window, test-grid-permitting dev profile, or the full
// production windows and grid.
func (c *Config) Genesis() *params.Genesis {
	if c.Network == "dev" {
		return params.DevGenesis()
	}
	return params.DefaultGenesis()
}

// VerbosityToLogLevel converts a numeric verbosity level to a log level
// string, matching the convention of every other subsystem's structured
// logger.
func VerbosityToLogLevel(v int) string {
	switch {
	case v <= 0:
		return "error" // silent maps to error-only
	case v == 1:
		return "error"
	case v == 2:
		return "warn"
	case v == 3:
		return "info"
	default:
		return "debug" // 4 and 5 both map to debug
	}
}

// dataDirSubdirs lists subdirectories created inside the data directory.
var dataDirSubdirs = []string{
	"chaindata",
	"keystore",
}

// InitDataDir creates the data directory and its standard subdirectories
// if they do not already exist.
func (c *Config) InitDataDir() error {
	if c.DataDir == "" {
		return errors.New("config: datadir must not be empty")
	}
	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		return fmt.Errorf("config: create datadir: %w", err)
	}
	for _, sub := range dataDirSubdirs {
		dir := filepath.Join(c.DataDir, sub)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("config: create %s: %w", sub, err)
		}
	}
	return nil
}

// ResolvePath resolves a path relative to the data directory.
func (c *Config) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}
