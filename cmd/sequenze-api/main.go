package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"sequenze/internal/cli"
	sequenzehttp "sequenze/internal/http"
	"sequenze/internal/log"
	"sequenze/internal/storage"
)

func main() {
	logger := cli.SetupLogger(log.ComponentAPI)

	logger.Info("Starting sequenze-api")

	cfg, err := cli.LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	server := sequenzehttp.NewServer(":"+cfg.Port, sqliteRepo)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	go func() {
		logger.Info("Listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server shutdown complete")
}
