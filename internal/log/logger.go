// Package log wraps log/slog with a component field so every line can be
// traced back to the subsystem that wrote it.
package log

import (
	"log/slog"
	"os"
)

// Config holds logger configuration
type Config struct {
	Level   slog.Level
	Handler slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level: slog.LevelInfo,
	}
}

// New creates a logger with the given configuration.
func New(config Config) *slog.Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return slog.New(handler)
}

// ForComponent returns a logger carrying the component attribute.
func ForComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(FieldComponent, component)
}

// SetDefault installs the logger process-wide so packages logging through
// slog directly share the same handler.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
