package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/good-yellow-bee/testdesk/internal/notifier"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "testdesk.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Server.Address != ":8080" || cfg.Storage.Driver != "sqlite" || cfg.Storage.Path == "" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Notifications.DisplayDuration != 3*time.Second || cfg.Assignment.SuggestionSize != 2 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9000"
  rate_limit_per_ip: 30
storage:
  driver: badger
notifications:
  display_duration: 5s
  rate_limit:
    max_per_window: 3
    window: 30s
  webhook:
    url: https://example.com/hook
    headers:
      Authorization: Bearer abc
assignment:
  confirm_delay: 1500ms
log:
  format: json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":9000" || cfg.Server.RateLimitPerIP != 30 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Storage.Path != "./data/badger" {
		t.Errorf("badger path default = %q", cfg.Storage.Path)
	}
	if cfg.Notifications.DisplayDuration != 5*time.Second || cfg.Notifications.RateLimit.Window != 30*time.Second {
		t.Errorf("notifications = %+v", cfg.Notifications)
	}
	if cfg.Notifications.Webhook.Headers["Authorization"] != "Bearer abc" {
		t.Errorf("webhook headers = %v", cfg.Notifications.Webhook.Headers)
	}
	if cfg.Assignment.ConfirmDelay != 1500*time.Millisecond {
		t.Errorf("confirm delay = %v", cfg.Assignment.ConfirmDelay)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":9000\"\n")
	t.Setenv("TESTDESK_SERVER_ADDRESS", ":7000")
	t.Setenv("TESTDESK_STORAGE_DRIVER", "memory")
	t.Setenv("TESTDESK_NOTIFICATIONS_SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":7000" {
		t.Errorf("address = %q, want env override", cfg.Server.Address)
	}
	if cfg.Storage.Driver != "memory" || cfg.Storage.Path != "" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Notifications.Slack.WebhookURL == "" {
		t.Error("slack webhook not read from env")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitPerIP = -1 }},
		{"zero suggestion size", func(c *Config) { c.Assignment.SuggestionSize = 0 }},
		{"negative confirm delay", func(c *Config) { c.Assignment.ConfirmDelay = -time.Second }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"missing sqlite path", func(c *Config) { c.Storage.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DefaultConfig()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "server: [")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestApplyNotifications(t *testing.T) {
	d := notifier.NewDispatcher(notifier.DefaultDispatcherConfig(), zerolog.Nop())
	defer d.Close()

	cfg := NotificationsConfig{
		Slack:   SlackConfig{WebhookURL: "https://hooks.slack.com/services/T/B/x"},
		Webhook: WebhookConfig{URL: "http://localhost:9999/hook"},
		RateLimit: RateLimitConfig{
			MaxPerWindow: 5,
			Window:       time.Minute,
		},
	}
	if err := applyNotifications(d, cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(d.Names()) != 2 {
		t.Fatalf("channels = %v", d.Names())
	}
	if stats := d.RateLimitStats(); stats.MaxPerWindow != 5 || !stats.Enabled {
		t.Errorf("rate limit = %+v", stats)
	}

	// Reload without slack and with an invalid webhook.
	cfg.Slack.WebhookURL = ""
	cfg.Webhook.URL = "ftp://example.com"
	cfg.RateLimit.Disabled = true
	if err := applyNotifications(d, cfg); err == nil {
		t.Error("expected error for invalid webhook")
	}
	if len(d.Names()) != 0 {
		t.Errorf("channels after reload = %v", d.Names())
	}
	if d.RateLimitStats().Enabled {
		t.Error("rate limit should be disabled")
	}
}

func TestConfigWatcherReloads(t *testing.T) {
	path := writeConfig(t, "notifications:\n  rate_limit:\n    max_per_window: 1\n")

	reloaded := make(chan *Config, 1)
	w := newConfigWatcher(path, func(c *Config) error {
		select {
		case reloaded <- c:
		default:
		}
		return nil
	}, zerolog.Nop())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("notifications:\n  rate_limit:\n    max_per_window: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-reloaded:
		if c.Notifications.RateLimit.MaxPerWindow != 7 {
			t.Errorf("max_per_window = %d, want 7", c.Notifications.RateLimit.MaxPerWindow)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watcher returned %v", err)
	}
}
