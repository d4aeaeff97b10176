// Package logger configures the structured logging used across DavinciMCP.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Default logging settings
const (
	DefaultLevel  = "info"
	DefaultFormat = "text"
)

// Setup creates a slog.Logger for the given level and format ("text" or
// "json") and installs it as the process default. Output goes to stderr so
// stdout stays free for the MCP stdio transport in serve mode.
func Setup(level, format string) *slog.Logger {
	return SetupWithWriter(level, format, os.Stderr)
}

// SetupWithWriter is Setup with an explicit output writer.
func SetupWithWriter(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string level to a slog.Level. Unknown levels fall
// back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
