package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/helixml/segalloc/internal/config"
)

func TestNewLogger(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	logger := NewLogger(cfg)

	if logger == nil || logger.Slog() == nil {
		t.Fatal("NewLogger should return a usable logger")
	}
}

func TestLogger_JSONLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG").Slog()

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}
	for i, line := range lines {
		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN").Slog()

	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") {
		t.Error("info record written at WARN level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn record missing")
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithRequestID(ctx, "req-2")
	logger.WithContext(ctx).Slog().Info("picked")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if data["session_id"] != "sess-1" {
		t.Errorf("session_id = %v, want sess-1", data["session_id"])
	}
	if data["request_id"] != "req-2" {
		t.Errorf("request_id = %v, want req-2", data["request_id"])
	}
}

func TestLogger_WithContextEmpty(t *testing.T) {
	logger := Discard()
	if logger.WithContext(context.Background()) != logger {
		t.Error("WithContext without ids should return the same logger")
	}
}

func TestContextIDs_NotSet(t *testing.T) {
	ctx := context.Background()
	if SessionID(ctx) != "" {
		t.Error("SessionID() should be empty when not set")
	}
	if RequestID(ctx) != "" {
		t.Error("RequestID() should be empty when not set")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{" info ", "INFO"},
		{"WARN", "WARN"},
		{"WARNING", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
