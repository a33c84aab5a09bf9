package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete brokerd configuration.
//
// This structure captures all configurable aspects of the broker including:
//   - Logging configuration
//   - Server-wide settings (listener, timeouts, shutdown)
//   - File store selection and configuration (store-specific)
//   - Settings store selection and configuration (store-specific)
//   - Access-control gate behavior
//   - Event log behavior
//
// Configuration sources (in order of precedence):
//  1. Environment variables (BROKERD_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store implementation defines its own configuration shape. The Config
// struct contains type-specific sections (e.g., files.local, files.s3) and
// only the section matching the selected type is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains listener and timeout settings
	Server ServerConfig `mapstructure:"server"`

	// Files specifies the file store type and type-specific configuration
	Files FilesConfig `mapstructure:"files"`

	// Settings specifies the settings store type and type-specific configuration
	Settings SettingsConfig `mapstructure:"settings"`

	// Access controls the access-control gate
	Access AccessConfig `mapstructure:"access"`

	// Events controls the audit event log
	Events EventsConfig `mapstructure:"events"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains listener and timeout settings.
type ServerConfig struct {
	// Listen is the TCP address the broker listens on (e.g., ":7070")
	Listen string `mapstructure:"listen" validate:"required"`

	// MaxConnections caps concurrently served connections (0 = unlimited)
	MaxConnections int `mapstructure:"max_connections" validate:"gte=0"`

	// ReadTimeout bounds a single message read (0 = no limit)
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"gte=0"`

	// WriteTimeout bounds a single reply write (0 = no limit)
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0"`

	// IdleTimeout disconnects connections with no traffic (0 = no limit)
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// FilesConfig specifies file store configuration.
//
// The Type field determines which store implementation is used.
// Only the corresponding type-specific configuration section is used.
type FilesConfig struct {
	// Type specifies which file store implementation to use
	// Valid values: local, s3
	Type string `mapstructure:"type" validate:"required,oneof=local s3"`

	// Local contains local-filesystem-specific configuration
	// Only used when Type = "local"
	Local map[string]any `mapstructure:"local"`

	// S3 contains S3-specific configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`
}

// SettingsConfig specifies settings store configuration.
type SettingsConfig struct {
	// Type specifies which settings store implementation to use
	// Valid values: memory, badger
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Memory contains memory-specific configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-specific configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`
}

// AccessConfig controls the access-control gate.
type AccessConfig struct {
	// Enabled turns the gate on. When false, external senders are never
	// checked.
	Enabled bool `mapstructure:"enabled"`

	// Prompt allows asking the user about unknown tenants. When false,
	// unknown tenants are denied outright.
	Prompt bool `mapstructure:"prompt"`

	// PromptDefault is the answer given when no interactive prompter is
	// wired (headless deployments)
	// Valid values: grant, deny
	PromptDefault string `mapstructure:"prompt_default" validate:"required,oneof=grant deny"`
}

// EventsConfig controls the audit event log.
type EventsConfig struct {
	// Enabled turns event recording on
	Enabled bool `mapstructure:"enabled"`

	// Directory is where rolling per-day event logs are written
	// Required when Enabled is true
	Directory string `mapstructure:"directory"`

	// LogCommands records an event per inbound command
	LogCommands bool `mapstructure:"log_commands"`

	// LogResults records an event per produced result
	LogResults bool `mapstructure:"log_results"`

	// LogAccess records access-control outcomes
	LogAccess bool `mapstructure:"log_access"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (BROKERD_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the BROKERD_ prefix and underscores.
	// Example: BROKERD_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("BROKERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/brokerd/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is acceptable: defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "brokerd")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "brokerd")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
