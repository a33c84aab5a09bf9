package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Logging.Level != "INFO" || cfg.Logging.Format != "text" || cfg.Logging.Output != "stdout" {
		t.Errorf("Logging defaults = %+v", cfg.Logging)
	}
	if cfg.Server.Listen != ":7070" {
		t.Errorf("Expected default listen ':7070', got %q", cfg.Server.Listen)
	}
	if cfg.Server.MaxConnections != 128 {
		t.Errorf("Expected default max_connections 128, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Server.IdleTimeout != 5*time.Minute {
		t.Errorf("Expected default idle_timeout 5m, got %v", cfg.Server.IdleTimeout)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Files.Type != "local" {
		t.Errorf("Expected default files type 'local', got %q", cfg.Files.Type)
	}
	if cfg.Files.Local["root"] == "" {
		t.Error("Expected a default local root")
	}
	if cfg.Settings.Type != "badger" {
		t.Errorf("Expected default settings type 'badger', got %q", cfg.Settings.Type)
	}
	if cfg.Settings.Badger["db_path"] == "" {
		t.Error("Expected a default badger db_path")
	}
	if cfg.Access.Enabled || cfg.Access.Prompt {
		t.Errorf("Access gate must default to off, got %+v", cfg.Access)
	}
	if cfg.Access.PromptDefault != "deny" {
		t.Errorf("Expected default prompt_default 'deny', got %q", cfg.Access.PromptDefault)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := Config{
		Logging: LoggingConfig{Level: "warn", Format: "json", Output: "stderr"},
		Server:  ServerConfig{Listen: ":8000", MaxConnections: 4, ShutdownTimeout: time.Second},
		Files:   FilesConfig{Type: "s3"},
	}
	ApplyDefaults(&cfg)

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected normalized 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Output != "stderr" {
		t.Errorf("Explicit logging values clobbered: %+v", cfg.Logging)
	}
	if cfg.Server.Listen != ":8000" || cfg.Server.MaxConnections != 4 {
		t.Errorf("Explicit server values clobbered: %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeout != time.Second {
		t.Errorf("Explicit shutdown_timeout clobbered: %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Files.Type != "s3" {
		t.Errorf("Explicit files type clobbered: %q", cfg.Files.Type)
	}
}

func TestApplyDefaults_EventsDirectory(t *testing.T) {
	cfg := Config{Events: EventsConfig{Enabled: true}}
	ApplyDefaults(&cfg)

	if cfg.Events.Directory == "" {
		t.Error("Enabled events must get a default directory")
	}

	cfg = Config{}
	ApplyDefaults(&cfg)
	if cfg.Events.Directory != "" {
		t.Error("Disabled events must not get a directory")
	}
}
