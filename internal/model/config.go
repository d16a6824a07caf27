package model

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all vgmatch settings
type Config struct {
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Limits      LimitsConfig      `mapstructure:"limits" yaml:"limits"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
}

// ConcurrencyConfig controls the batch worker pool
type ConcurrencyConfig struct {
	Workers int           `mapstructure:"workers" yaml:"workers"` // Comparisons run in parallel
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"` // Whole-run deadline, 0 disables
}

// CacheConfig controls memoization of representation pipelines
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`               // Disk layer, empty for memory only
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// LimitsConfig bounds the work done per comparison
type LimitsConfig struct {
	MaxPaths int `mapstructure:"max_paths" yaml:"max_paths"` // Haplotype frontier cap, 0 disables
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	File string `mapstructure:"file" yaml:"file"` // Empty disables the export
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`           // Batch report directory
	Markdown bool   `mapstructure:"markdown" yaml:"markdown"` // Also write Markdown reports
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".vgmatch", "cache")
	}

	return &Config{
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
			Timeout: 10 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Limits: LimitsConfig{
			MaxPaths: 1 << 16,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Dir: "./vgmatch-reports",
		},
	}
}

// EnvPrefix prefixes environment overrides, e.g. VGMATCH_CACHE_DIR for cache.dir
const EnvPrefix = "VGMATCH"

var envKeyReplacer = strings.NewReplacer(".", "_")

// BindEnv makes v read VGMATCH_* variables for nested keys
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

// LoadConfig merges defaults, the config file, environment and bound flags held by v
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if v.GetBool("verbose") {
		cfg.Output.Verbose = true
	}
	if cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = 1
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables are seen by Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	v.SetDefault("concurrency.timeout", cfg.Concurrency.Timeout)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.memory_ttl", cfg.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", cfg.Cache.DiskTTL)
	v.SetDefault("limits.max_paths", cfg.Limits.MaxPaths)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("metrics.file", cfg.Metrics.File)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.markdown", cfg.Output.Markdown)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
}
