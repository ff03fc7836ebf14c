// Package rwxlog configures the stdlib log/slog logger used across every
// rwx package. All log output goes to os.Stderr so stdout stays clean for
// the NDJSON event stream and transformed-content output.
package rwxlog

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the global slog default logger with level and format
// ("json" or anything else for text), writing to os.Stderr.
func Setup(level slog.Level, format string) {
	SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit writer, for tests.
func SetupWithWriter(level slog.Level, format string, w io.Writer) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// ResolveLevel applies RWX_DEBUG, then --verbose, then --quiet, defaulting
// to info.
func ResolveLevel(verbose, quiet bool) slog.Level {
	if os.Getenv("RWX_DEBUG") == "1" {
		return slog.LevelDebug
	}
	if verbose {
		return slog.LevelDebug
	}
	if quiet {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// ResolveFormat reads RWX_LOG_FORMAT, defaulting to "text".
func ResolveFormat() string {
	if strings.EqualFold(os.Getenv("RWX_LOG_FORMAT"), "json") {
		return "json"
	}
	return "text"
}

// Component returns a child logger tagged with a "component" attribute.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}
