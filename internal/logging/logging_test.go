package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %d, expected %d", tt.input, got, tt.expected)
		}
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if !ValidLevel(s) {
			t.Errorf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("verbose") {
		t.Error("ValidLevel(verbose) = true")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LogLevelWarn, Output: &buf, Prefix: "test"})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn %d", 1)
	l.Error("error %s", "two")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below level were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] test: warn 1") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] test: error two") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LogLevelDebug, Output: &buf})

	l.WithComponent("codec").WithField("bytes", 12).Info("decoded")

	out := buf.String()
	if !strings.Contains(out, "{bytes=12, component=codec}") {
		t.Errorf("fields not rendered in sorted order: %q", out)
	}
}

func TestLogger_WithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(Config{Level: LogLevelDebug, Output: &buf})
	_ = parent.WithField("k", "v")

	parent.Info("plain")
	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Error("dropped")
	NullLogger.WithComponent("x").Warn("dropped too")

	var nilLogger *Logger
	nilLogger.Info("nil logger is safe")
	if nilLogger.WithComponent("x") != NullLogger {
		t.Error("WithComponent on nil logger should return NullLogger")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LogLevelError, Output: &buf})
	l.SetLevel(LogLevelDebug)
	if l.Level() != LogLevelDebug {
		t.Fatalf("Level() = %v, want DEBUG", l.Level())
	}
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("debug message missing after SetLevel: %q", buf.String())
	}
}

func TestLogger_ExactLine(t *testing.T) {
	var buf bytes.Buffer
	stamp := time.Date(2024, 3, 9, 14, 5, 7, 250_000_000, time.UTC)
	l := New(Config{
		Level:  LogLevelDebug,
		Output: &buf,
		Prefix: "ghostkey",
		Now:    func() time.Time { return stamp },
	})

	l.WithFields(map[string]any{"path": "a.txt", "ranges": 3}).
		WithField("component", "store").
		WithField("ranges", 4).
		Warn("dropped %d ranges", 2)
	l.Info("plain")

	want := "2024-03-09T14:05:07.250 [WARN] ghostkey: dropped 2 ranges {component=store, path=a.txt, ranges=4}\n" +
		"2024-03-09T14:05:07.250 [INFO] ghostkey: plain\n"
	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}
