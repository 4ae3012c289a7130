package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadConfig tests loading default config
func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg == nil {
		t.Fatal("Config is nil")
	}
}

// TestLoadConfigDefaults tests default values are set
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Address == "" {
		t.Error("Address should not be empty")
	}
	if cfg.Poll.TimeoutSeconds != 30 {
		t.Errorf("Expected default poll timeout 30, got %d", cfg.Poll.TimeoutSeconds)
	}
	if !cfg.Poll.HeartbeatOnList {
		t.Error("Heartbeat-on-list should default to enabled")
	}
	if cfg.Reaper.IntervalSeconds != 15 {
		t.Errorf("Expected default reap interval 15, got %d", cfg.Reaper.IntervalSeconds)
	}
}

// TestLoadConfigFromFile tests YAML file loading
func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("address: \":9090\"\npoll:\n  timeout_seconds: 60\n  heartbeat_on_list: false\nreaper:\n  interval_seconds: 10\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}
	if cfg.Address != ":9090" {
		t.Errorf("Expected address :9090, got %s", cfg.Address)
	}
	if cfg.Poll.TimeoutSeconds != 60 {
		t.Errorf("Expected poll timeout 60, got %d", cfg.Poll.TimeoutSeconds)
	}
	if cfg.Poll.HeartbeatOnList {
		t.Error("Heartbeat-on-list should be disabled by the file")
	}
}

// TestEnvOverrides tests environment variable overrides
func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("POLL_TIMEOUT_SECONDS", "45")
	t.Setenv("POLL_HEARTBEAT_ON_LIST", "false")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Address != ":7070" {
		t.Errorf("Expected address :7070, got %s", cfg.Address)
	}
	if cfg.Poll.TimeoutSeconds != 45 {
		t.Errorf("Expected poll timeout 45, got %d", cfg.Poll.TimeoutSeconds)
	}
	if cfg.Poll.HeartbeatOnList {
		t.Error("Heartbeat-on-list should be disabled by env")
	}
}

// TestValidateRejectsBadValues tests validation failures
func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*ServerConfig){
		func(c *ServerConfig) { c.Address = "" },
		func(c *ServerConfig) { c.Poll.TimeoutSeconds = 0 },
		func(c *ServerConfig) { c.Reaper.IntervalSeconds = 0 },
		func(c *ServerConfig) { c.Push.SendBufferSize = 0 },
		func(c *ServerConfig) { c.Logging.Level = "verbose" },
	}

	for i, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Case %d: Validate should have failed", i)
		}
	}
}

// TestDurationHelpers tests the duration accessors
func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PollTimeout() != 30*time.Second {
		t.Errorf("Expected 30s poll timeout, got %v", cfg.PollTimeout())
	}
	if cfg.ReapInterval() != 15*time.Second {
		t.Errorf("Expected 15s reap interval, got %v", cfg.ReapInterval())
	}
}

// TestConfigString tests String() method
func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.String() == "" {
		t.Error("String() should not return empty string")
	}
}
