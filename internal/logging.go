package internal

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// InitLogging installs a text or JSON handler on stdout as the default logger
func InitLogging(level, format string) *slog.Logger {
	return InitLoggingTo(os.Stdout, level, format)
}

// InitLoggingTo is InitLogging with an explicit writer
func InitLoggingTo(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to slog; unknown names are info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
