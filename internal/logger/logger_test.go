package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: LevelDebug, Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	start := LogPhase(Logger(), "lex")
	LogPhaseComplete(Logger(), "lex", start, "tokens", 12)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["phase"] != "lex" || entry["tokens"] != float64(12) {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Config{Level: LevelWarn, Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { defaultLogger = nil })

	Info("hidden")
	LogPhaseComplete(Logger(), "parse", time.Now())
	LogError(Logger(), "evaluate", "main.hexpat", 3, "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") || strings.Contains(out, "completed phase") {
		t.Errorf("debug and info output leaked: %s", out)
	}
	if !strings.Contains(out, "line=3") || !strings.Contains(out, "message=boom") {
		t.Errorf("missing error entry: %s", out)
	}
}

func TestToSlogLevel(t *testing.T) {
	if toSlogLevel(LevelError) != slog.LevelError || toSlogLevel(LogLevel(42)) != slog.LevelInfo {
		t.Error("unexpected level mapping")
	}
}
