package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./train_configs", cfg.Paths.ConfigDir)
	assert.Equal(t, "./run_llama_train.sh", cfg.Paths.TrainScript)
	assert.Equal(t, "./create_seed_checkpoint.sh", cfg.Paths.SeedScript)
	assert.Empty(t, cfg.Paths.Flavors)
	assert.Equal(t, "0,1,2,3", cfg.Run.LogRank)
	assert.Zero(t, cfg.Run.Timeout)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
paths:
  config_dir: ./configs
  train_script: ./train.sh
run:
  log_rank: "0"
  timeout: 45m
history:
  enabled: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "./configs", cfg.Paths.ConfigDir)
	assert.Equal(t, "./train.sh", cfg.Paths.TrainScript)
	// untouched keys keep their defaults
	assert.Equal(t, "./create_seed_checkpoint.sh", cfg.Paths.SeedScript)
	assert.Equal(t, "0", cfg.Run.LogRank)
	assert.Equal(t, 45*time.Minute, cfg.Run.Timeout)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromPath_Missing(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log:\n  level: debug\n"), 0644))

	t.Setenv("TITANTEST_LOG_LEVEL", "error")
	t.Setenv("TITANTEST_RUN_LOG_RANK", "0,1")

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "0,1", cfg.Run.LogRank)
}

func TestLoad_ProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigName), []byte("paths:\n  config_dir: ./ci_configs\n"), 0644))

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./ci_configs", cfg.Paths.ConfigDir)
	assert.Equal(t, "./run_llama_train.sh", cfg.Paths.TrainScript)
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/titantest", getUserConfigDir())
	assert.Equal(t, "/custom/config/titantest/config.yaml", GetUserConfigPath())
}

func TestDefaultDBPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	assert.Equal(t, "/custom/data/titantest/history.db", defaultDBPath())
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	require.NoError(t, cfg.Set("run.timeout", "10m"))
	require.NoError(t, cfg.Set("history.enabled", "false"))
	require.NoError(t, Save(cfg))

	loaded, err := LoadFromPath(GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, loaded.Run.Timeout)
	assert.False(t, loaded.History.Enabled)
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"paths.config_dir", "./other"},
		{"paths.train_script", "./t.sh"},
		{"paths.seed_script", "./s.sh"},
		{"paths.flavors", "flavors.yaml"},
		{"run.log_rank", "0"},
		{"run.timeout", "1h0m0s"},
		{"history.enabled", "false"},
		{"history.db_path", "/tmp/h.db"},
		{"log.level", "warn"},
		{"log.json", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Set(tt.key, tt.value))
			got, err := cfg.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
	assert.Len(t, Keys(), len(tests))
}

func TestSet_Invalid(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Set("run.timeout", "soon"))
	assert.Error(t, cfg.Set("history.enabled", "maybe"))
	assert.Error(t, cfg.Set("log.json", "yes please"))
	assert.Error(t, cfg.Set("nope", "x"))

	_, err := cfg.Get("nope")
	assert.Error(t, err)
}
