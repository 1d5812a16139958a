// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Game logs stamp events in ticks; the default matches second-resolution logs.
	TicksPerMinute int64  `env:"TICKS_PER_MINUTE" envDefault:"60"`
	Delimiter      string `env:"LOG_DELIMITER" envDefault:","`
	MaxGameMinutes int    `env:"MAX_GAME_MINUTES" envDefault:"1440"`

	TracingEnabled bool `env:"TRACING_ENABLED" envDefault:"false"`
}

var ErrInvalidConfig = errors.New("config: invalid")

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TicksPerMinute <= 0 {
		return fmt.Errorf("%w: TICKS_PER_MINUTE must be positive, got %d", ErrInvalidConfig, c.TicksPerMinute)
	}
	if c.MaxGameMinutes <= 0 {
		return fmt.Errorf("%w: MAX_GAME_MINUTES must be positive, got %d", ErrInvalidConfig, c.MaxGameMinutes)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("%w: LOG_DELIMITER must be one character, got %q", ErrInvalidConfig, c.Delimiter)
	}
	if r := c.DelimiterRune(); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("%w: LOG_DELIMITER %q is not usable", ErrInvalidConfig, c.Delimiter)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be json or text, got %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

// DelimiterRune returns the log field separator.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// NewLogger builds a logger writing to w at the given level. Unknown levels
// fall back to info.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
