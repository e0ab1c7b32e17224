package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"DEBUG", LevelDebug, true},
		{" info ", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"loud", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func newTestLogger(buf *bytes.Buffer, level Level) *Logger {
	l := New(Config{Level: level, Output: buf, Prefix: "test"})
	l.sink.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelDebug)

	l.WithComponent("castfile").WithField("offset", 42).Warn("skipped line: %s", "bad")

	want := "2024-01-02T03:04:05.000 [WARN] test: skipped line: bad {component=castfile, offset=42}\n"
	if got := buf.String(); got != want {
		t.Errorf("log line = %q, want %q", got, want)
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, LevelWarn)
	child := l.WithComponent("x")

	l.Debug("hidden")
	child.Info("hidden")
	child.Error("shown")
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("wrote %d lines, want 1: %q", got, buf.String())
	}

	l.SetLevel(LevelDebug)
	child.Debug("now shown")
	if !strings.Contains(buf.String(), "now shown") {
		t.Error("SetLevel on parent did not affect derived logger")
	}
	if !child.Enabled(LevelDebug) {
		t.Error("Enabled(LevelDebug) = false after SetLevel")
	}
}

func TestNullLogger(t *testing.T) {
	l := OrNull(nil)
	if l.Enabled(LevelError) {
		t.Error("null logger reports enabled")
	}
	l.Error("discarded %d", 1)
}
