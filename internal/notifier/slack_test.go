package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSlackConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  SlackConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty config",
			config:  SlackConfig{},
			wantErr: true,
			errMsg:  "webhook URL is required",
		},
		{
			name: "http URL rejected",
			config: SlackConfig{
				WebhookURL: "http://hooks.slack.com/services/xxx",
			},
			wantErr: true,
			errMsg:  "webhook URL must use HTTPS",
		},
		{
			name: "valid config",
			config: SlackConfig{
				WebhookURL: "https://hooks.slack.com/services/T00/B00/xxx",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSlackNotifierSend(t *testing.T) {
	var receivedPayload slackMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &receivedPayload); err != nil {
			t.Errorf("failed to unmarshal payload: %v", err)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	// Use test server URL (allow non-HTTPS for testing)
	notifier := &SlackNotifier{
		config:     SlackConfig{WebhookURL: server.URL},
		httpClient: server.Client(),
	}

	msg := Message{
		Text: "Project Checkout rejected, reason: budget",
		Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if err := notifier.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if receivedPayload.Text != msg.Text {
		t.Errorf("fallback text = %q", receivedPayload.Text)
	}
	if len(receivedPayload.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(receivedPayload.Blocks))
	}
	if receivedPayload.Blocks[0].Text == nil || receivedPayload.Blocks[0].Text.Text != msg.Text {
		t.Errorf("section block = %+v", receivedPayload.Blocks[0])
	}
	if !strings.Contains(receivedPayload.Blocks[1].Elements[0].Text, "2024-01-15 10:30:00") {
		t.Errorf("context block = %+v", receivedPayload.Blocks[1])
	}
}

func TestSlackNotifierSendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("invalid_payload"))
	}))
	defer server.Close()

	notifier := &SlackNotifier{
		config:     SlackConfig{WebhookURL: server.URL},
		httpClient: server.Client(),
	}

	err := notifier.Send(context.Background(), Message{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "invalid_payload") {
		t.Errorf("err = %v, want slack API error with body", err)
	}
}

func TestNewSlackNotifier_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewSlackNotifier(SlackConfig{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestWebhookNotifierSend(t *testing.T) {
	var got Message
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	n, err := NewWebhookNotifier(WebhookConfig{
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "Bearer abc"},
	})
	if err != nil {
		t.Fatalf("new webhook: %v", err)
	}
	if n.Name() != "webhook" {
		t.Errorf("name = %q", n.Name())
	}

	if err := n.Send(context.Background(), Message{Text: "Paid 50 to T1 (tester)"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Text != "Paid 50 to T1 (tester)" || auth != "Bearer abc" {
		t.Errorf("received text=%q auth=%q", got.Text, auth)
	}
}

func TestWebhookConfigValidation(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com/hook", "://bad"} {
		cfg := WebhookConfig{URL: raw}
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%q) should fail", raw)
		}
	}
}
