// Package cli holds the startup plumbing shared by the binaries.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"sequenze/internal/config"
	applog "sequenze/internal/log"
)

// SetupLogger installs the default logger and returns one tagged with the
// binary's component name. LOG_LEVEL selects the minimum level, defaulting
// to info.
func SetupLogger(component string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	logger := applog.New(applog.Config{Level: level})
	applog.SetDefault(logger)
	return applog.ForComponent(logger, component)
}

// LoadConfig reads .env for local development, then loads and validates the
// configuration from the environment.
func LoadConfig() (*config.Config, error) {
	// Ignore errors: in production there is no .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
