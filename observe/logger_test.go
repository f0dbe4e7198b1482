package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	zapobs "go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	core, logs := zapobs.New(zapcore.DebugLevel)
	logger := NewLoggerWithCore(core)

	logger.Info(context.Background(), "resolved",
		String("key", "db.password"),
		String("db.password", "hunter2"),
		String("api_key", "abc123"),
		String("user", "alice"),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["db.password"] != Redacted {
		t.Errorf("db.password = %v, want redacted", fields["db.password"])
	}
	if fields["api_key"] != Redacted {
		t.Errorf("api_key = %v, want redacted", fields["api_key"])
	}
	if fields["key"] != "db.password" {
		t.Errorf("key = %v, want the key name", fields["key"])
	}
	if fields["user"] != "alice" {
		t.Errorf("user = %v, want alice", fields["user"])
	}
}

func TestLogger_CorrelationFields(t *testing.T) {
	core, logs := zapobs.New(zapcore.DebugLevel)
	logger := NewLoggerWithCore(core)

	ctx := WithCorrelation(context.Background(), "LoginTest")
	ctx = WithStep(ctx, "open browser")
	logger.Warn(ctx, "source missing")

	c, _ := CorrelationFrom(ctx)
	fields := logs.All()[0].ContextMap()
	if fields["test"] != "LoginTest" {
		t.Errorf("test = %v", fields["test"])
	}
	if fields["correlation_id"] != c.ID {
		t.Errorf("correlation_id = %v, want %s", fields["correlation_id"], c.ID)
	}
	if fields["step"] != "open browser" {
		t.Errorf("step = %v", fields["step"])
	}
}

func TestLogger_NilContext(t *testing.T) {
	core, logs := zapobs.New(zapcore.DebugLevel)
	NewLoggerWithCore(core).Debug(nil, "no ctx") //nolint:staticcheck // nil ctx is tolerated

	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1", logs.Len())
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden")
	logger.Error(context.Background(), "shown", Err(errors.New("boom")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["msg"] != "shown" || entry["level"] != "error" || entry["error"] != "boom" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestLogger_With(t *testing.T) {
	core, logs := zapobs.New(zapcore.InfoLevel)
	logger := NewLoggerWithCore(core).With(String("component", "secret"), String("token", "t0k"))

	logger.Info(context.Background(), "cleared")

	fields := logs.All()[0].ContextMap()
	if fields["component"] != "secret" {
		t.Errorf("component = %v", fields["component"])
	}
	if fields["token"] != Redacted {
		t.Errorf("token = %v, want redacted", fields["token"])
	}
}

func TestLogger_ErrNilSkipped(t *testing.T) {
	core, logs := zapobs.New(zapcore.InfoLevel)
	NewLoggerWithCore(core).Info(context.Background(), "ok", Err(nil))

	if len(logs.All()[0].Context) != 0 {
		t.Errorf("expected no fields, got %v", logs.All()[0].Context)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Info(context.Background(), "dropped", String("password", "x"))
	if logger.With(String("a", "b")) == nil {
		t.Fatal("With should return a logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
		"bogus": LevelInfo,
		"":      LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if LevelWarn.String() != "warn" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
}
