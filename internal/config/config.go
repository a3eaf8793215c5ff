// Package config loads up's optional TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/up-stack/up/internal/errors"
)

// LogLevel specifies the logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat specifies the log output format.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// PathsConfig holds path configuration.
type PathsConfig struct {
	// FilesDir is the conventional asset subdirectory searched after
	// the playbook directory itself.
	FilesDir string `toml:"files_dir"`
}

// DefaultsConfig holds default values applied to tasks that omit them.
type DefaultsConfig struct {
	// Timeout is the duration string used when a task has no timeout
	// key. Empty means no default.
	Timeout string `toml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `toml:"level"`
	Format LogFormat `toml:"format"`
	File   string    `toml:"file"`
}

// Config is the main configuration struct for up.
type Config struct {
	Paths    PathsConfig    `toml:"paths"`
	Defaults DefaultsConfig `toml:"defaults"`
	Logging  LoggingConfig  `toml:"logging"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			FilesDir: "files",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
			File:   "",
		},
	}
}

// Load loads configuration from path, merging with defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.CodeConfigInvalidValue, "parsing config", err).
			WithDetail("path", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads up.toml from the playbook directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "up.toml"))
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Paths.FilesDir == "" {
		return errors.ConfigMissingField("paths.files_dir")
	}
	switch c.Logging.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return errors.ConfigInvalidValue("logging.level", string(c.Logging.Level), "unknown level")
	}
	switch c.Logging.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return errors.ConfigInvalidValue("logging.format", string(c.Logging.Format), "unknown format")
	}
	return nil
}

// LogFile returns the absolute log file path, or empty when file
// logging is disabled.
func (c *Config) LogFile(baseDir string) string {
	if c.Logging.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Logging.File) {
		return c.Logging.File
	}
	return filepath.Join(baseDir, c.Logging.File)
}
