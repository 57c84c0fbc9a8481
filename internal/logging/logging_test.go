// ABOUTME: Tests for logger construction.
// ABOUTME: Verifies level filtering and JSON output.
package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/harperreed/gym/internal/config"
)

func TestDefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&config.Config{}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn should be logged: %q", out)
	}
}

func TestUnknownLevelFallsBack(t *testing.T) {
	logger := NewWithWriter(&config.Config{LogLevel: "chatty"}, &bytes.Buffer{})
	if logger.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", logger.GetLevel())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&config.Config{LogLevel: "debug", LogFormat: "json"}, &buf)

	logger.Debug("class joined", "user_id", 1)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "class joined" {
		t.Errorf("msg = %v, want 'class joined'", entry["msg"])
	}
	if entry["user_id"] != float64(1) {
		t.Errorf("user_id = %v, want 1", entry["user_id"])
	}
}
