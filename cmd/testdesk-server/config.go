// Package main provides the TestDesk server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/testdesk/internal/logger"
	"github.com/good-yellow-bee/testdesk/internal/storage"
)

// envPrefix prefixes every environment override, e.g. TESTDESK_SERVER_ADDRESS.
const envPrefix = "TESTDESK_"

// Config represents the server configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server" envPrefix:"SERVER_"`
	Metrics       MetricsConfig       `yaml:"metrics" envPrefix:"METRICS_"`
	Storage       StorageConfig       `yaml:"storage" envPrefix:"STORAGE_"`
	Notifications NotificationsConfig `yaml:"notifications" envPrefix:"NOTIFICATIONS_"`
	Assignment    AssignmentConfig    `yaml:"assignment" envPrefix:"ASSIGNMENT_"`
	Log           logger.Config       `yaml:"log" envPrefix:"LOG_"`
	Verbose       bool                `yaml:"-" env:"-"` // set via CLI flag
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Address         string        `yaml:"address" env:"ADDRESS"`                     // HTTP listen address (default: :8080)
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`           // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`         // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`   // default: 10s
	RateLimitPerIP  int           `yaml:"rate_limit_per_ip" env:"RATE_LIMIT_PER_IP"` // mutating requests per minute, 0 disables
}

// MetricsConfig contains Prometheus endpoint settings.
type MetricsConfig struct {
	Disabled bool   `yaml:"disabled" env:"DISABLED"`
	Address  string `yaml:"address" env:"ADDRESS"` // default: :9090
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver     string        `yaml:"driver" env:"DRIVER"` // sqlite, badger or memory
	Path       string        `yaml:"path" env:"PATH"`
	GCInterval time.Duration `yaml:"gc_interval" env:"GC_INTERVAL"` // badger only
}

// NotificationsConfig controls outbound delivery of dashboard notifications.
type NotificationsConfig struct {
	DisplayDuration time.Duration   `yaml:"display_duration" env:"DISPLAY_DURATION"` // how long the dashboard shows a new message
	QueueSize       int             `yaml:"queue_size" env:"QUEUE_SIZE"`
	SendTimeout     time.Duration   `yaml:"send_timeout" env:"SEND_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Slack           SlackConfig     `yaml:"slack" envPrefix:"SLACK_"`
	Webhook         WebhookConfig   `yaml:"webhook" envPrefix:"WEBHOOK_"`
}

// RateLimitConfig limits outbound notifications.
type RateLimitConfig struct {
	Disabled     bool          `yaml:"disabled" env:"DISABLED"`
	MaxPerWindow int           `yaml:"max_per_window" env:"MAX_PER_WINDOW"` // default: 10
	Window       time.Duration `yaml:"window" env:"WINDOW"`                 // default: 1m
}

// SlackConfig enables the Slack channel when WebhookURL is set.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" env:"WEBHOOK_URL"`
}

// WebhookConfig enables the generic webhook channel when URL is set.
type WebhookConfig struct {
	URL     string            `yaml:"url" env:"URL"`
	Headers map[string]string `yaml:"headers" env:"HEADERS"`
}

// AssignmentConfig controls tester assignment confirmation.
type AssignmentConfig struct {
	SuggestionSize int           `yaml:"suggestion_size" env:"SUGGESTION_SIZE"` // default: 2
	ConfirmDelay   time.Duration `yaml:"confirm_delay" env:"CONFIRM_DELAY"`     // 0 confirms immediately
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// DefaultConfig returns a configuration with default values and
// environment overrides.
func DefaultConfig() (*Config, error) {
	return finish(&Config{})
}

func finish(cfg *Config) (*Config, error) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = storage.DriverSQLite
	}
	if c.Storage.Path == "" {
		switch c.Storage.Driver {
		case storage.DriverSQLite:
			c.Storage.Path = "./data/testdesk.db"
		case storage.DriverBadger:
			c.Storage.Path = "./data/badger"
		}
	}
	if c.Notifications.DisplayDuration == 0 {
		c.Notifications.DisplayDuration = 3 * time.Second
	}
	if c.Notifications.RateLimit.MaxPerWindow == 0 {
		c.Notifications.RateLimit.MaxPerWindow = 10
	}
	if c.Notifications.RateLimit.Window == 0 {
		c.Notifications.RateLimit.Window = time.Minute
	}
	if c.Assignment.SuggestionSize == 0 {
		c.Assignment.SuggestionSize = 2
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = logger.FormatAuto
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverSQLite, storage.DriverBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %s", c.Storage.Driver)
		}
	case storage.DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be sqlite, badger or memory, got %q", c.Storage.Driver)
	}
	if c.Server.RateLimitPerIP < 0 {
		return fmt.Errorf("server.rate_limit_per_ip must not be negative")
	}
	if c.Notifications.RateLimit.MaxPerWindow < 0 {
		return fmt.Errorf("notifications.rate_limit.max_per_window must not be negative")
	}
	if c.Notifications.QueueSize < 0 {
		return fmt.Errorf("notifications.queue_size must not be negative")
	}
	if c.Assignment.SuggestionSize < 1 {
		return fmt.Errorf("assignment.suggestion_size must be at least 1")
	}
	if c.Assignment.ConfirmDelay < 0 {
		return fmt.Errorf("assignment.confirm_delay must not be negative")
	}
	switch c.Log.Format {
	case logger.FormatAuto, logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("log.format must be auto, console or json, got %q", c.Log.Format)
	}
	return nil
}
