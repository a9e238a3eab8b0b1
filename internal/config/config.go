// Package config handles configuration loading and management for titantest.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment variable overrides, e.g. TITANTEST_LOG_LEVEL.
	EnvPrefix = "TITANTEST"
	// ProjectConfigName is the project-level config file looked up from the
	// working directory towards the filesystem root.
	ProjectConfigName = ".titantest.yaml"
)

// Config holds all configuration for titantest.
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Run     RunConfig     `mapstructure:"run"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// PathsConfig locates the training configs and the scripts that consume them.
type PathsConfig struct {
	ConfigDir   string `mapstructure:"config_dir"`
	TrainScript string `mapstructure:"train_script"`
	SeedScript  string `mapstructure:"seed_script"`
	Flavors     string `mapstructure:"flavors"`
}

// RunConfig holds settings passed to every launched training run.
type RunConfig struct {
	// LogRank is exported to the launch script as LOG_RANK.
	LogRank string `mapstructure:"log_rank"`
	// Timeout bounds each subprocess. Zero waits forever.
	Timeout time.Duration `mapstructure:"timeout"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TITANTEST_*)
// 2. Project config (.titantest.yaml in current directory or parent)
// 3. User config (~/.config/titantest/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))
	for _, key := range Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		v.Set(key, value)
	}

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// newViper returns a viper instance with defaults and env overrides wired.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.History.DBPath = os.ExpandEnv(cfg.History.DBPath)
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("paths.config_dir", d.Paths.ConfigDir)
	v.SetDefault("paths.train_script", d.Paths.TrainScript)
	v.SetDefault("paths.seed_script", d.Paths.SeedScript)
	v.SetDefault("paths.flavors", d.Paths.Flavors)

	v.SetDefault("run.log_rank", d.Run.LogRank)
	v.SetDefault("run.timeout", d.Run.Timeout.String())

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db_path", d.History.DBPath)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// getUserConfigDir returns the XDG config directory for titantest.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "titantest")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "titantest")
	}
	return filepath.Join(home, ".config", "titantest")
}

// defaultDBPath returns the XDG data path of the history database.
func defaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".titantest", "history.db")
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "titantest", "history.db")
}

// findProjectConfig searches for .titantest.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ConfigDir:   "./train_configs",
			TrainScript: "./run_llama_train.sh",
			SeedScript:  "./create_seed_checkpoint.sh",
		},
		Run: RunConfig{
			LogRank: "0,1,2,3",
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  defaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
