package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Positive(t, cfg.Concurrency.Workers)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.MemoryTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Positive(t, cfg.Limits.MaxPaths)
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency:
  workers: 3
cache:
  memory_ttl: 5m
limits:
  max_paths: 100
log:
  format: json
`), 0644))

	t.Setenv("VGMATCH_LOG_LEVEL", "debug")

	v := viper.New()
	v.SetConfigFile(path)
	BindEnv(v)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Concurrency.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Cache.MemoryTTL)
	assert.Equal(t, 100, cfg.Limits.MaxPaths)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoadConfig_VerboseFlagAndWorkerFloor(t *testing.T) {
	v := viper.New()
	v.Set("verbose", true)
	v.Set("concurrency.workers", 0)

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, 1, cfg.Concurrency.Workers)
}
