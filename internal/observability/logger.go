package observability

import (
	"log/slog"
	"os"
)

// LoggerConfig is the subset of service configuration the logger needs.
type LoggerConfig interface {
	GetLogLevel() string
	GetLogFormat() string
}

// NewLogger builds a slog.Logger writing to stdout in the configured format
// ("json" or "text") at the configured level. Unknown values fall back to
// JSON at info.
func NewLogger(cfg LoggerConfig) *slog.Logger {
	level := parseLevel(cfg.GetLogLevel())
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.GetLogFormat() == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
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
