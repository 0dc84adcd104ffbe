package logger

import (
	"io"
	"log/slog"
	"os"
)

var Log *slog.Logger

func init() {
	Log = New(os.Stdout, "info", "json")
}

// Init replaces the global logger and makes it the slog default.
// level: "debug", "info", "warn", "error" (anything else is info)
// format: "json" or "text"
func Init(level, format string) {
	Log = New(os.Stdout, level, format)
	slog.SetDefault(Log)
}

func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
