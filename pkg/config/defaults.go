package config

import (
	"strings"
	"time"
)

// GetDefaultConfig returns a configuration with every default applied.
func GetDefaultConfig() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyFilesDefaults(&cfg.Files)
	applySettingsDefaults(&cfg.Settings)
	applyAccessDefaults(&cfg.Access)
	applyEventsDefaults(&cfg.Events)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets listener and timeout defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Listen == "" {
		cfg.Listen = ":7070"
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 128
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyFilesDefaults sets file store defaults.
func applyFilesDefaults(cfg *FilesConfig) {
	if cfg.Type == "" {
		cfg.Type = "local"
	}

	if cfg.Local == nil {
		cfg.Local = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}

	if _, ok := cfg.Local["root"]; !ok {
		cfg.Local["root"] = "/var/lib/brokerd/files"
	}
}

// applySettingsDefaults sets settings store defaults.
func applySettingsDefaults(cfg *SettingsConfig) {
	if cfg.Type == "" {
		cfg.Type = "badger"
	}

	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}

	if _, ok := cfg.Badger["db_path"]; !ok {
		cfg.Badger["db_path"] = "/var/lib/brokerd/settings"
	}
}

// applyAccessDefaults sets gate defaults. Enabled and Prompt are plain
// booleans, so their off state is the zero value and needs no default; a
// headless deployment answering prompts denies.
func applyAccessDefaults(cfg *AccessConfig) {
	if cfg.PromptDefault == "" {
		cfg.PromptDefault = "deny"
	}
}

// applyEventsDefaults sets event log defaults.
func applyEventsDefaults(cfg *EventsConfig) {
	if cfg.Enabled && cfg.Directory == "" {
		cfg.Directory = "/var/log/brokerd"
	}
}
