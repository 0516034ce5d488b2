package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "debug", Format: FormatAuto}, &buf, false)
	l.Debug().Str("action", "approve").Msg("committed")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["action"] != "approve" || line["message"] != "committed" {
		t.Errorf("line = %v", line)
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "warn", Format: FormatJSON}, &buf, false)
	l.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level: %q", buf.String())
	}
}

func TestNewWithWriter_ConsoleOnTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{}, &buf, true)
	l.Info().Msg("hello")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("terminal output should not be JSON: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q", buf.String())
	}
}
