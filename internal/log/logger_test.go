package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestJSONLoggerCarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Component: ComponentBot, Output: &buf})
	logger.Info("Update received", FieldChatID, int64(7))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentBot {
		t.Fatalf("component = %v", entry[FieldComponent])
	}
	if entry[FieldChatID] != float64(7) {
		t.Fatalf("chat_id = %v", entry[FieldChatID])
	}
}

func TestHTTPCompletedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	logger.HTTPCompleted(context.Background(), "GET", "/x", 503, time.Millisecond, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected error level, got %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	logger := Discard().WithComponent(ComponentHTTP)
	ctx := WithContext(context.Background(), logger)
	if got := FromContext(ctx); got.Component() != ComponentHTTP {
		t.Fatalf("component = %s", got.Component())
	}
	if got := FromContext(context.Background()); got == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, err := Setup("warn", "json", ComponentWorker)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if slog.Default().Handler() != logger.Handler() {
		t.Error("Setup should install the logger as default")
	}

	if _, err := Setup("chatty", "text", ComponentApp); err == nil {
		t.Error("expected error for unknown level")
	}
}
