package main

import (
	"flag"
	"fmt"
	"os"

	"sequenze/internal/cli"
	"sequenze/internal/log"
	"sequenze/internal/report"
	"sequenze/internal/services"
	"sequenze/internal/storage"
)

func main() {
	transactionsPath := flag.String("transactions", "", "path to the transactions JSON file (required)")
	distancesPath := flag.String("distances", "", "path to a precomputed distances JSON file")
	threshold := flag.Float64("threshold", 0, "similarity threshold override, 0 uses the configured default")
	restOf := flag.String("rest", "", "print the rest of the sequence for this transaction id")
	save := flag.Bool("save", false, "persist the run to SQLite")
	writeDistances := flag.String("write-distances", "", "write the computed distance table to this path")
	flag.Parse()

	logger := cli.SetupLogger(log.ComponentApp)

	if *transactionsPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sequenze -transactions <file> [-distances <file>] [-threshold <t>] [-rest <id>] [-save] [-write-distances <file>]")
		os.Exit(2)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	records, err := services.LoadTransactionsFile(*transactionsPath)
	if err != nil {
		logger.Error("Failed to load transactions", "path", *transactionsPath, "error", err)
		os.Exit(1)
	}

	var distances map[string]float64
	if *distancesPath != "" {
		distances, err = services.LoadDistancesFile(*distancesPath)
		if err != nil {
			logger.Error("Failed to load distances", "path", *distancesPath, "error", err)
			os.Exit(1)
		}
	}

	var repo *storage.SQLiteRepository
	if *save {
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
	}

	service := services.NewDetectionService(cfg, repo, nil, nil)

	result, err := service.Detect(ctx, "", records, distances, *threshold)
	if err != nil {
		logger.Error("Detection failed", "error", err)
		os.Exit(1)
	}

	if *restOf != "" {
		rest, err := result.Index.RestOfSequence(*restOf)
		if err != nil {
			logger.Error("Lookup failed", "transaction_id", *restOf, "error", err)
			os.Exit(1)
		}
		if err := report.WriteRestOfSequence(os.Stdout, *restOf, rest); err != nil {
			logger.Error("Failed to write report", "error", err)
			os.Exit(1)
		}
	} else {
		if err := report.WriteSequences(os.Stdout, result.Sequences); err != nil {
			logger.Error("Failed to write report", "error", err)
			os.Exit(1)
		}
	}

	if *writeDistances != "" {
		if err := services.WriteDistancesFile(*writeDistances, result.Distances); err != nil {
			logger.Error("Failed to write distances", "path", *writeDistances, "error", err)
			os.Exit(1)
		}
		logger.Info("Distance table written", "path", *writeDistances, "pairs", len(result.Distances))
	}

	if *save {
		if err := service.Persist(ctx, result); err != nil {
			logger.Error("Failed to persist run", "run_id", result.RunID, "error", err)
			os.Exit(1)
		}
		logger.Info("Run persisted", "run_id", result.RunID)
	}
}
