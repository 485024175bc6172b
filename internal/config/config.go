// Package config loads kpidash settings from a YAML file and the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, a .env file in
// the working directory, real environment variables. Command-line flags are
// applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadFromEnv.
const (
	EnvDatabase      = "KPIDASH_DB"
	EnvTargets       = "KPIDASH_TARGETS"
	EnvLogLevel      = "KPIDASH_LOG_LEVEL"
	EnvLogFormat     = "KPIDASH_LOG_FORMAT"
	EnvLogFile       = "KPIDASH_LOG_FILE"
	EnvRollingWindow = "KPIDASH_ROLLING_WINDOW"
	EnvModelCommand  = "KPIDASH_MODEL_COMMAND"
	EnvModelReport   = "KPIDASH_MODEL_REPORT"
)

// Config is the full kpidash configuration.
type Config struct {
	// Database is the SQLite event store path.
	Database string `yaml:"database"`

	// Targets is a target tables YAML file. Empty uses the built-in tables.
	Targets string `yaml:"targets"`

	Log       LogConfig       `yaml:"log"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Model     ModelConfig     `yaml:"model"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" | "json"

	// File, when set, receives log output with size-based rotation
	// instead of stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// DashboardConfig tunes report computation.
type DashboardConfig struct {
	// RollingWindow is the team-average window in months.
	RollingWindow int `yaml:"rolling_window"`

	// DisableCache turns off aggregate memoization.
	DisableCache bool `yaml:"disable_cache"`
}

// ModelConfig locates the session-outcome model.
type ModelConfig struct {
	// Command is the argv of the model process. Empty disables prediction.
	Command []string `yaml:"command"`

	// Report is the classification report CSV exported with the model.
	Report string `yaml:"report"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML configuration file. An empty path returns Default().
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file is loaded first if present.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvTargets); v != "" {
		cfg.Targets = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(EnvRollingWindow); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvRollingWindow, err)
		}
		cfg.Dashboard.RollingWindow = n
	}
	if v := os.Getenv(EnvModelCommand); v != "" {
		cfg.Model.Command = strings.Fields(v)
	}
	if v := os.Getenv(EnvModelReport); v != "" {
		cfg.Model.Report = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Dashboard.RollingWindow < 1 {
		return fmt.Errorf("dashboard.rolling_window must be at least 1, got %d", c.Dashboard.RollingWindow)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "kpidash.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
	if c.Dashboard.RollingWindow == 0 {
		c.Dashboard.RollingWindow = 3
	}
}
