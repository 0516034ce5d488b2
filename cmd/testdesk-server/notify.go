package main

import (
	"errors"
	"fmt"

	"github.com/good-yellow-bee/testdesk/internal/notifier"
)

// dispatcherConfig converts the notifications section.
func dispatcherConfig(c NotificationsConfig) notifier.DispatcherConfig {
	return notifier.DispatcherConfig{
		QueueSize:   c.QueueSize,
		SendTimeout: c.SendTimeout,
		RateLimit:   rateLimitConfig(c.RateLimit),
	}
}

func rateLimitConfig(c RateLimitConfig) notifier.RateLimitConfig {
	return notifier.RateLimitConfig{
		MaxPerWindow: c.MaxPerWindow,
		Window:       c.Window,
		Enabled:      !c.Disabled,
	}
}

// applyNotifications brings the dispatcher's channels and rate limit in line
// with c. Channels without a URL are removed. A channel with an invalid
// configuration is left out and reported.
func applyNotifications(d *notifier.Dispatcher, c NotificationsConfig) error {
	d.SetRateLimit(rateLimitConfig(c.RateLimit))

	var errs []error

	if c.Slack.WebhookURL == "" {
		d.Unregister("slack")
	} else if n, err := notifier.NewSlackNotifier(notifier.SlackConfig{WebhookURL: c.Slack.WebhookURL}); err != nil {
		d.Unregister("slack")
		errs = append(errs, fmt.Errorf("slack: %w", err))
	} else {
		d.Register(n)
	}

	if c.Webhook.URL == "" {
		d.Unregister("webhook")
	} else if n, err := notifier.NewWebhookNotifier(notifier.WebhookConfig{URL: c.Webhook.URL, Headers: c.Webhook.Headers}); err != nil {
		d.Unregister("webhook")
		errs = append(errs, fmt.Errorf("webhook: %w", err))
	} else {
		d.Register(n)
	}

	return errors.Join(errs...)
}
