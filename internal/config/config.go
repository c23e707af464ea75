// Package config loads the devenv user configuration.
//
// Configuration is read from ~/.config/devenv/config.toml and can be
// overridden per-project by DEVENV_* environment variables, optionally
// supplied through a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultReportDir is where reports are written, relative to the project dir.
const DefaultReportDir = ".devenv"

// DefaultCacheTTL is how long content cache entries stay valid.
const DefaultCacheTTL = time.Hour

// DefaultCacheMaxBytes is the content cache size ceiling.
const DefaultCacheMaxBytes = 100 << 20 // 100MB

// CleanupConfig holds cleanup engine defaults.
type CleanupConfig struct {
	Profile       string `toml:"profile"`         // default profile name
	Concurrency   int    `toml:"concurrency"`     // 0 = NumCPU
	Cache         bool   `toml:"cache"`           // content/config caching enabled
	CacheDir      string `toml:"cache_dir"`       // empty = <report_dir>/cache
	CacheTTL      string `toml:"cache_ttl"`       // duration string, e.g. "1h"
	CacheMaxBytes int64  `toml:"cache_max_bytes"` // 0 = default ceiling
}

// DoctorConfig holds doctor defaults.
type DoctorConfig struct {
	FailBelow int `toml:"fail_below"` // exit non-zero when health score is below this
}

// Config holds the devenv configuration.
type Config struct {
	ReportDir string        `toml:"report_dir"`
	Cleanup   CleanupConfig `toml:"cleanup"`
	Doctor    DoctorConfig  `toml:"doctor"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		ReportDir: DefaultReportDir,
		Cleanup: CleanupConfig{
			Profile:       "default",
			Cache:         true,
			CacheTTL:      "1h",
			CacheMaxBytes: DefaultCacheMaxBytes,
		},
	}
}

// CacheTTLDuration parses the configured TTL, falling back to the default.
func (c *CleanupConfig) CacheTTLDuration() time.Duration {
	if c.CacheTTL == "" {
		return DefaultCacheTTL
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return DefaultCacheTTL
	}
	return d
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "devenv", "config.toml"), nil
}

// Load reads config from ~/.config/devenv/config.toml and applies
// DEVENV_* environment overrides.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load() (Config, error) {
	cfg := Default()

	path, err := configPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return Default(), fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Default(), fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// .env in the working directory feeds env overrides; absence is fine.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return Default(), err
	}

	return cfg, nil
}

// applyEnv overlays DEVENV_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DEVENV_REPORT_DIR"); v != "" {
		cfg.ReportDir = v
	}
	if v := os.Getenv("DEVENV_PROFILE"); v != "" {
		cfg.Cleanup.Profile = v
	}
	if v := os.Getenv("DEVENV_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cleanup.Concurrency = n
		}
	}
	if v := os.Getenv("DEVENV_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cleanup.Cache = b
		}
	}
	if v := os.Getenv("DEVENV_CACHE_DIR"); v != "" {
		cfg.Cleanup.CacheDir = v
	}
	if v := os.Getenv("DEVENV_CACHE_TTL"); v != "" {
		cfg.Cleanup.CacheTTL = v
	}
}

// validate rejects values that would silently misbehave later.
func validate(cfg *Config) error {
	if cfg.ReportDir == "" {
		cfg.ReportDir = DefaultReportDir
	}
	if filepath.IsAbs(cfg.ReportDir) {
		return fmt.Errorf("report_dir must be relative to the project directory, got: %q", cfg.ReportDir)
	}
	if cfg.Cleanup.Concurrency < 0 {
		return fmt.Errorf("cleanup.concurrency must be >= 0, got: %d", cfg.Cleanup.Concurrency)
	}
	if cfg.Cleanup.CacheTTL != "" {
		if _, err := time.ParseDuration(cfg.Cleanup.CacheTTL); err != nil {
			return fmt.Errorf("invalid cleanup.cache_ttl %q: %w", cfg.Cleanup.CacheTTL, err)
		}
	}
	if cfg.Cleanup.CacheMaxBytes < 0 {
		return fmt.Errorf("cleanup.cache_max_bytes must be >= 0, got: %d", cfg.Cleanup.CacheMaxBytes)
	}
	if cfg.Cleanup.Profile == "" {
		cfg.Cleanup.Profile = "default"
	}
	if cfg.Cleanup.CacheMaxBytes == 0 {
		cfg.Cleanup.CacheMaxBytes = DefaultCacheMaxBytes
	}
	if cfg.Doctor.FailBelow < 0 || cfg.Doctor.FailBelow > 100 {
		return fmt.Errorf("doctor.fail_below must be between 0 and 100, got: %d", cfg.Doctor.FailBelow)
	}
	return nil
}
