// Package logging configures structured logging for the server.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format is the log output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level to emit.
	Level slog.Level

	// Format selects text or json output.
	Format Format

	// Output is where log lines go. Defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns sensible logging defaults.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// New creates a slog.Logger from the configuration.
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}
	return slog.New(handler)
}

// Nop returns a logger that discards everything. Use it when a logger is
// required but logging is not wanted, e.g. in tests.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a level string ("debug", "info", "warn", "error").
// Unrecognized strings fall back to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat parses a format string ("text" or "json").
// Unrecognized strings fall back to text.
func ParseFormat(s string) Format {
	if s == "json" || s == "JSON" {
		return FormatJSON
	}
	return FormatText
}
