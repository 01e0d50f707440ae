package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/telhawk-systems/telhawk-querybuilder/common/middleware"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v: %s", err, buf.String())
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  slog.Level
		format string
	}{
		{name: "json format with info level", level: slog.LevelInfo, format: "json"},
		{name: "text format with debug level", level: slog.LevelDebug, format: "text"},
		{name: "default format (json) with error level", level: slog.LevelError, format: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level, tt.format)
			if logger == nil || logger.Logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, slog.LevelInfo, "text").Info("compiled", Conditions(2))
	if !strings.Contains(buf.String(), "conditions=2") {
		t.Errorf("expected text output, got: %s", buf.String())
	}

	buf.Reset()
	NewWithWriter(&buf, slog.LevelInfo, "json").Info("compiled", Conditions(2))
	if entry := decode(t, &buf); entry["conditions"] != float64(2) {
		t.Errorf("expected conditions=2, got: %v", entry)
	}
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelWarn, "json")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got: %s", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected warn output, got: %s", buf.String())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "json")

	ctx := middleware.WithRequestID(context.Background(), "test-req-123")
	logger.WithContext(ctx).Info("test message")
	if entry := decode(t, &buf); entry[FieldRequestID] != "test-req-123" {
		t.Errorf("expected request_id, got: %v", entry)
	}

	buf.Reset()
	logger.WithContext(context.Background()).Info("test message")
	if entry := decode(t, &buf); entry[FieldRequestID] != nil {
		t.Errorf("expected no request_id, got: %v", entry)
	}
}

func TestContextMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelDebug, "json")
	ctx := middleware.WithRequestID(context.Background(), "req-1")

	tests := []struct {
		level string
		log   func(context.Context, string, ...any)
	}{
		{"DEBUG", logger.DebugContext},
		{"INFO", logger.InfoContext},
		{"WARN", logger.WarnContext},
		{"ERROR", logger.ErrorContext},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log(ctx, "message")
			entry := decode(t, &buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry[FieldRequestID] != "req-1" {
				t.Errorf("expected request_id in %v", entry)
			}
		})
	}
}

func TestWithAndComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, "json").
		With(Service("query-builder")).
		Component("analyzer")

	logger.Info("scored", Complexity(7))
	entry := decode(t, &buf)
	if entry[FieldService] != "query-builder" || entry[FieldComponent] != "analyzer" {
		t.Errorf("expected service and component, got: %v", entry)
	}
	if entry[FieldComplexity] != float64(7) {
		t.Errorf("expected complexity, got: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{" Error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	logger := New(slog.LevelInfo, "json")
	SetDefault(logger)

	if slog.Default() != logger.Logger {
		t.Error("SetDefault did not update slog.Default()")
	}
	if Default().Logger != logger.Logger {
		t.Error("Default() should wrap slog.Default()")
	}
}
