package config

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.TicksPerMinute != 60 {
		t.Fatalf("TicksPerMinute = %d, want 60", cfg.TicksPerMinute)
	}
	if cfg.MaxGameMinutes != 1440 {
		t.Fatalf("MaxGameMinutes = %d, want 1440", cfg.MaxGameMinutes)
	}
	if cfg.DelimiterRune() != ',' {
		t.Fatalf("Delimiter = %q, want ,", cfg.Delimiter)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
	if cfg.TracingEnabled {
		t.Fatal("TracingEnabled should default to false")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("TICKS_PER_MINUTE", "60000")
	t.Setenv("LOG_DELIMITER", ";")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "250ms")
	t.Setenv("MAX_GAME_MINUTES", "90")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.TicksPerMinute != 60000 || cfg.DelimiterRune() != ';' {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.TracingEnabled || cfg.ShutdownTimeout != 250*time.Millisecond || cfg.MaxGameMinutes != 90 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"TICKS_PER_MINUTE": "0",
		"MAX_GAME_MINUTES": "-1",
		"LOG_DELIMITER":    "::",
		"LOG_FORMAT":       "xml",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Parse()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Parse() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseRejectsBadType(t *testing.T) {
	t.Setenv("TICKS_PER_MINUTE", "sixty")
	if _, err := Parse(); err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("expected JSON output, got %s", out)
	}

	buf.Reset()
	NewLogger(&buf, "bogus", "text").Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Fatalf("expected text output, got %s", buf.String())
	}
	if NewLogger(&buf, "bogus", "text").Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("unknown level should fall back to info")
	}
}
