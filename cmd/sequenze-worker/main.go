package main

import (
	"context"
	"os"
	"time"

	"sequenze/internal/amqp"
	"sequenze/internal/cli"
	"sequenze/internal/export/sheets"
	"sequenze/internal/log"
	"sequenze/internal/services"
	"sequenze/internal/storage"
	"sequenze/internal/worker"
)

func main() {
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("Starting sequenze-worker")

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

	// Spreadsheet export is optional
	var exporter services.SequenceExporter
	if cfg.SheetsSpreadsheetID != "" {
		sheetsExporter, err := sheets.New(context.Background(), cfg.SheetsSpreadsheetID, cfg.SheetsSheetName)
		if err != nil {
			logger.Error("Failed to initialize Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Sheets exporter initialized", "spreadsheet_id", cfg.SheetsSpreadsheetID)
	} else {
		logger.Info("Sheets export disabled - no SHEETS_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	service := services.NewDetectionService(cfg, sqliteRepo, amqpClient, exporter)
	detectWorker := worker.NewDetectWorker(service)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	go func() {
		if err := amqpClient.ConsumeDetectJobs(ctx, func(msg *amqp.DetectJobMessage) error {
			return detectWorker.HandleDetectJob(ctx, msg)
		}); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			cancel()
		}
	}()

	if cfg.RescanInterval > 0 {
		logger.Info("Rescan loop enabled", "interval", cfg.RescanInterval.String())
		go detectWorker.RunRescanLoop(ctx, cfg.RescanInterval)
	}

	<-ctx.Done()
	logger.Info("Shutting down worker...")

	// Give the in-flight job a moment to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
