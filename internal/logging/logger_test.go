package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vgmimport/internal/config"
)

func TestPrettyHandlerRendersSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))
	logger = NewComponentLogger(logger, "importer")

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithSystem(ctx, "Sega Genesis")
	ctx = WithGame(ctx, "Sonic", "sonic.zip")
	WithContext(ctx, logger).Info("game imported", Int("tracks", 2))

	out := buf.String()
	if !strings.Contains(out, "INFO [importer] Sega Genesis · Sonic – game imported") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - tracks: 2") {
		t.Fatalf("expected tracks field, got %q", out)
	}
	if !strings.Contains(out, "    - archive: sonic.zip") {
		t.Fatalf("expected archive field, got %q", out)
	}
	if strings.Contains(out, "run_id") {
		t.Fatalf("info output should hide run_id, got %q", out)
	}
}

func TestPrettyHandlerDebugShowsAllFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Debug("entry", String(FieldRunID, "abc"), String(FieldGame, "Sonic"), String("name", "has space"))

	out := buf.String()
	if !strings.Contains(out, "DEBUG Sonic – entry") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "run_id: abc") {
		t.Fatalf("debug output should include run_id, got %q", out)
	}
	if !strings.Contains(out, `name: "has space"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}
	logger.Warn("shown")
	if !strings.Contains(buf.String(), "WARN – shown") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestJSONHandlerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl, false))
	logger.Error("import failed", Error(errors.New("boom")), String(FieldErrorKind, "archive_open"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "error" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["msg"] != "import failed" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts key")
	}
	if payload["error"] != "boom" {
		t.Fatalf("unexpected error value: %v", payload["error"])
	}
	if payload[FieldErrorKind] != "archive_open" {
		t.Fatalf("unexpected error kind: %v", payload[FieldErrorKind])
	}
}

func TestJSONHandlerWritesDurationsAsMilliseconds(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar), false))
	logger.Info("game imported", Duration("duration", 1500*time.Millisecond))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["duration_ms"] != float64(1500) {
		t.Fatalf("unexpected duration_ms: %v", payload["duration_ms"])
	}
	if _, ok := payload["duration"]; ok {
		t.Fatal("expected raw duration key to be replaced")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "vgmimport.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("unexpected log file contents: %q", data)
	}
}

func TestWithContextWithoutFieldsReturnsLogger(t *testing.T) {
	base := NewNop()
	if got := WithContext(context.Background(), base); got != base {
		t.Fatal("expected same logger when context has no fields")
	}
	if _, ok := RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id")
	}
}
