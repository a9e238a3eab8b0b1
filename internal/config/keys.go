package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Keys returns every settable configuration key in display order.
func Keys() []string {
	return []string{
		"paths.config_dir",
		"paths.train_script",
		"paths.seed_script",
		"paths.flavors",
		"run.log_rank",
		"run.timeout",
		"history.enabled",
		"history.db_path",
		"log.level",
		"log.json",
	}
}

// Get returns a configuration value by dot-notation key.
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "paths.config_dir":
		return c.Paths.ConfigDir, nil
	case "paths.train_script":
		return c.Paths.TrainScript, nil
	case "paths.seed_script":
		return c.Paths.SeedScript, nil
	case "paths.flavors":
		return c.Paths.Flavors, nil
	case "run.log_rank":
		return c.Run.LogRank, nil
	case "run.timeout":
		return c.Run.Timeout.String(), nil
	case "history.enabled":
		return strconv.FormatBool(c.History.Enabled), nil
	case "history.db_path":
		return c.History.DBPath, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.json":
		return strconv.FormatBool(c.Log.JSON), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set sets a configuration value by dot-notation key.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "paths.config_dir":
		c.Paths.ConfigDir = value
	case "paths.train_script":
		c.Paths.TrainScript = value
	case "paths.seed_script":
		c.Paths.SeedScript = value
	case "paths.flavors":
		c.Paths.Flavors = value
	case "run.log_rank":
		c.Run.LogRank = value
	case "run.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for run.timeout: %w", err)
		}
		c.Run.Timeout = d
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for history.enabled: %w", err)
		}
		c.History.Enabled = b
	case "history.db_path":
		c.History.DBPath = value
	case "log.level":
		c.Log.Level = value
	case "log.json":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for log.json: %w", err)
		}
		c.Log.JSON = b
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
