package main

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ShayCichocki/titantest/internal/config"
	"github.com/ShayCichocki/titantest/internal/flavors"
	"github.com/ShayCichocki/titantest/internal/logutil"
)

var (
	flagConfigDir string
	flagFlavors   string
	flagLogLevel  string

	flagDryRun    bool
	flagNoHistory bool
	flagTimeout   time.Duration
)

// addCommonFlags registers flags shared by every command.
func addCommonFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagConfigDir, "config-dir", "", "Directory holding the training configs (default ./train_configs)")
	fs.StringVar(&flagFlavors, "flavors", "", "YAML flavor registry replacing the built-in flavors")
	fs.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// addRunFlags registers flags that only apply to test runs.
func addRunFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&flagDryRun, "dry-run", false, "Print the commands instead of running them")
	fs.BoolVar(&flagNoHistory, "no-history", false, "Do not record this run in the history database")
	fs.DurationVar(&flagTimeout, "timeout", 0, "Kill any single process running longer than this (0 waits forever)")
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagConfigDir != "" {
		cfg.Paths.ConfigDir = flagConfigDir
	}
	if flagFlavors != "" {
		cfg.Paths.Flavors = flagFlavors
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagTimeout > 0 {
		cfg.Run.Timeout = flagTimeout
	}
	if flagNoHistory {
		cfg.History.Enabled = false
	}
	return cfg, nil
}

// newLogger builds the logger described by cfg.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lg, err := logutil.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return lg, nil
}

// loadRegistry returns the flavor file named in cfg, or the built-in flavors.
func loadRegistry(cfg *config.Config, outputDir string) (flavors.Registry, error) {
	if cfg.Paths.Flavors == "" {
		return flavors.Builtin(outputDir), nil
	}
	return flavors.LoadFile(cfg.Paths.Flavors, outputDir)
}
