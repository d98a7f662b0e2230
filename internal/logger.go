package internal

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger in development and a JSON logger in every
// other environment. level accepts slog level names ("debug", "warn", ...)
// in any case; unknown values fall back to info.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	if env == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts)).With("service", "media-thumbnails", "env", env)
}
