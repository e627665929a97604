package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"climate-server/internal/config"
)

func TestNew_releaseWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}

	logger := New(&buf, cfg, "1.2.3", "climate-server")
	logger.Info("hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{
		"msg":     "hello",
		"app":     "climate-server",
		"version": "1.2.3",
		"env":     "prod",
		"k":       "v",
	} {
		if rec[key] != want {
			t.Errorf("%s = %v; want %q", key, rec[key], want)
		}
	}
}

func TestNew_respectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelWarn}

	logger := New(&buf, cfg, "1.2.3", "climate-server")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record written at warn level: %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestNew_devUsesTint(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelDebug}

	logger := New(&buf, cfg, "dev", "climate-server")
	logger.Debug("tinted", "station", "USC00519281")

	out := buf.String()
	if !strings.Contains(out, "tinted") || !strings.Contains(out, "station=USC00519281") {
		t.Fatalf("unexpected tint output: %q", out)
	}
	if json.Valid(buf.Bytes()) {
		t.Fatalf("dev output should not be JSON: %q", out)
	}
}
