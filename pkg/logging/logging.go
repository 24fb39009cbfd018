// Package logging provides structured logging setup using Go's standard library log/slog package.
//
// The logging package configures slog with logfmt format (human-readable key=value pairs)
// and maps string log levels (ERROR, WARNING, INFO, DEBUG) to slog levels. Every logger
// is tagged with a "component" attribute so host and provider log lines can be told apart
// when a provider is loaded in-process for testing.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a structured logger tagged with component, writing logfmt-formatted
// records to w. Supported levels (case-insensitive): ERROR, WARNING, INFO, DEBUG.
// Invalid levels default to INFO.
func New(component, level string, w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})

	return slog.New(handler).With(slog.String("component", component))
}

// NewLogger creates a new structured logger with the specified log level,
// writing to stdout. Kept as the default entrypoint for command binaries.
func NewLogger(component, level string) *slog.Logger {
	return New(component, level, os.Stdout)
}

// parseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for invalid or empty levels (safe default).
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR":
		return slog.LevelError
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "INFO":
		return slog.LevelInfo
	case "DEBUG":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
