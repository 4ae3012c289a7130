package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	Address  string         `yaml:"address"`
	Push     PushConfig     `yaml:"push"`
	Poll     PollConfig     `yaml:"poll"`
	Reaper   ReaperConfig   `yaml:"reaper"`
	Logging  LoggingConfig  `yaml:"logging"`
	Liveness LivenessConfig `yaml:"liveness"`
}

// PushConfig represents settings for the persistent websocket transport
type PushConfig struct {
	ReadLimitBytes int64 `yaml:"read_limit_bytes"`
	WriteTimeout   int   `yaml:"write_timeout_seconds"`
	SendBufferSize int   `yaml:"send_buffer_size"`
}

// PollConfig represents settings for the request/response transport
type PollConfig struct {
	TimeoutSeconds  int  `yaml:"timeout_seconds"`
	HeartbeatOnList bool `yaml:"heartbeat_on_list"`
}

// ReaperConfig represents settings for the periodic liveness sweep
type ReaperConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// LoggingConfig represents logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LivenessConfig represents the periodic "server alive" log
type LivenessConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Address: ":8080",
		Push: PushConfig{
			ReadLimitBytes: 4096,
			WriteTimeout:   5,
			SendBufferSize: 64,
		},
		Poll: PollConfig{
			TimeoutSeconds:  30,
			HeartbeatOnList: true,
		},
		Reaper: ReaperConfig{
			IntervalSeconds: 15,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Liveness: LivenessConfig{
			IntervalSeconds: 300,
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*ServerConfig, error) {
	config := DefaultConfig()

	// Load from file if provided
	if configPath != "" {
		if err := loadFromFile(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	applyEnvOverrides(config)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string, config *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return err
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(config *ServerConfig) {
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		config.Address = addr
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		config.Logging.Format = logFormat
	}

	if timeout := os.Getenv("POLL_TIMEOUT_SECONDS"); timeout != "" {
		if val, err := strconv.Atoi(timeout); err == nil {
			config.Poll.TimeoutSeconds = val
		}
	}

	if heartbeat := os.Getenv("POLL_HEARTBEAT_ON_LIST"); heartbeat != "" {
		config.Poll.HeartbeatOnList = heartbeat == "true"
	}

	if interval := os.Getenv("REAP_INTERVAL_SECONDS"); interval != "" {
		if val, err := strconv.Atoi(interval); err == nil {
			config.Reaper.IntervalSeconds = val
		}
	}
}

// Validate validates the configuration
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server address cannot be empty")
	}

	if c.Poll.TimeoutSeconds < 1 {
		return fmt.Errorf("poll timeout must be at least 1 second")
	}

	if c.Reaper.IntervalSeconds < 1 {
		return fmt.Errorf("reap interval must be at least 1 second")
	}

	if c.Push.SendBufferSize < 1 {
		return fmt.Errorf("push send buffer size must be at least 1")
	}

	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	valid := []string{"debug", "info", "warn", "error"}
	level = strings.ToLower(level)
	for _, v := range valid {
		if level == v {
			return true
		}
	}
	return false
}

// PollTimeout returns the poll-client timeout as a duration
func (c *ServerConfig) PollTimeout() time.Duration {
	return time.Duration(c.Poll.TimeoutSeconds) * time.Second
}

// ReapInterval returns the reaper period as a duration
func (c *ServerConfig) ReapInterval() time.Duration {
	return time.Duration(c.Reaper.IntervalSeconds) * time.Second
}

// WriteTimeout returns the push write deadline as a duration
func (c *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.Push.WriteTimeout) * time.Second
}

// LivenessInterval returns the liveness log period as a duration
func (c *ServerConfig) LivenessInterval() time.Duration {
	return time.Duration(c.Liveness.IntervalSeconds) * time.Second
}

// String returns a string representation of the configuration (for logging)
func (c *ServerConfig) String() string {
	return fmt.Sprintf("Config{Address: %s, PollTimeout: %ds, ReapInterval: %ds, LogLevel: %s}",
		c.Address, c.Poll.TimeoutSeconds, c.Reaper.IntervalSeconds, c.Logging.Level)
}
