// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Environment variables read by FromEnv.
const (
	EnvWorkers      = "COLOURMASK_WORKERS"
	EnvSolverPlugin = "COLOURMASK_SOLVER_PLUGIN"
	EnvLogLevel     = "COLOURMASK_LOG_LEVEL"
)

// Config holds settings shared by all commands.
type Config struct {
	// Workers is the number of scan workers.
	Workers int

	// SolverPlugin is the path to an SVM solver plugin binary. Empty means the
	// built-in solver.
	SolverPlugin string

	// LogLevel is the default log level when neither --verbose nor --quiet is given.
	LogLevel hclog.Level
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		LogLevel: hclog.Info,
	}
}

// FromEnv loads the configuration from process environment variables.
func FromEnv() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup loads the configuration through lookup, which has the signature
// of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvWorkers); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid %s %q: must be a positive integer", EnvWorkers, v)
		}
		cfg.Workers = n
	}

	if v, ok := lookup(EnvSolverPlugin); ok {
		cfg.SolverPlugin = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		level := hclog.LevelFromString(strings.TrimSpace(v))
		if level == hclog.NoLevel {
			return Config{}, fmt.Errorf("invalid %s %q", EnvLogLevel, v)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}
