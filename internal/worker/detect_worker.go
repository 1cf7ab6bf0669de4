// Package worker consumes detection jobs from AMQP and runs them through
// the detection service.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sequenze/internal/amqp"
	"sequenze/internal/services"
)

// DetectWorker handles detection jobs: read the referenced files, run the
// detector, persist the result.
type DetectWorker struct {
	service *services.DetectionService

	mu          sync.Mutex
	lastJob     *amqp.DetectJobMessage
	lastHandled time.Time
}

func NewDetectWorker(service *services.DetectionService) *DetectWorker {
	return &DetectWorker{service: service}
}

// HandleDetectJob processes a single detection job from AMQP.
func (w *DetectWorker) HandleDetectJob(ctx context.Context, msg *amqp.DetectJobMessage) error {
	slog.InfoContext(ctx, "Processing detect job",
		"run_id", msg.RunID,
		"transactions_path", msg.TransactionsPath)

	records, err := services.LoadTransactionsFile(msg.TransactionsPath)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	var distances map[string]float64
	if msg.DistancesPath != "" {
		distances, err = services.LoadDistancesFile(msg.DistancesPath)
		if err != nil {
			return fmt.Errorf("load distances: %w", err)
		}
	}

	result, err := w.service.Detect(ctx, msg.RunID, records, distances, msg.Threshold)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if err := w.service.Persist(ctx, result); err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	w.mu.Lock()
	w.lastJob = msg
	w.lastHandled = time.Now()
	w.mu.Unlock()

	return nil
}

// Rescan re-runs the most recently handled job, picking up changes to its
// input file. A worker that has not handled a job yet has nothing to rescan.
func (w *DetectWorker) Rescan(ctx context.Context) error {
	w.mu.Lock()
	last := w.lastJob
	w.mu.Unlock()

	if last == nil {
		slog.DebugContext(ctx, "No job handled yet, skipping rescan")
		return nil
	}

	msg := amqp.NewDetectJobMessage(last.RunID+"-rescan-"+time.Now().UTC().Format("20060102T150405"),
		last.TransactionsPath, last.DistancesPath, last.Threshold)
	return w.HandleDetectJob(ctx, msg)
}

// RunRescanLoop re-runs the last job on a fixed interval until the context
// is cancelled. Interval 0 disables the loop.
func (w *DetectWorker) RunRescanLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Rescan(ctx); err != nil {
				slog.ErrorContext(ctx, "Rescan failed", "error", err)
			}
		}
	}
}
