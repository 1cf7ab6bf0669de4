// Package services wires the detection pipeline together: load, build,
// index, persist, publish.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sequenze/internal/amqp"
	"sequenze/internal/config"
	"sequenze/internal/core"
	"sequenze/internal/sequence"
	"sequenze/internal/similarity"
	"sequenze/internal/storage"
	"sequenze/internal/store"
)

// SequenceExporter pushes a persisted run to an external sink, e.g. a
// spreadsheet.
type SequenceExporter interface {
	ExportRun(ctx context.Context, run storage.Run) error
}

// Result is one completed detection: the validated store, the partition and
// the query index over it.
type Result struct {
	RunID     string
	CreatedAt time.Time
	Threshold float64
	Store     *store.Store
	Sequences []core.Sequence
	Index     *sequence.Index
	// Distances is the similarity cache after the run, keyed by canonical
	// pair. Feeding it back into a later run skips the recomputation.
	Distances map[string]float64
}

// Singletons counts the sequences with a single member.
func (r *Result) Singletons() int {
	n := 0
	for _, s := range r.Sequences {
		if s.IsSingleton() {
			n++
		}
	}
	return n
}

// DetectionService orchestrates detection runs across the similarity
// provider, SQLite and AMQP. Repository, AMQP client and exporter are all
// optional; a nil dependency disables that side effect.
type DetectionService struct {
	cfg        *config.Config
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	exporter   SequenceExporter
}

func NewDetectionService(cfg *config.Config, repo *storage.SQLiteRepository, amqpClient *amqp.Client, exporter SequenceExporter) *DetectionService {
	return &DetectionService{
		cfg:        cfg,
		storage:    repo,
		amqpClient: amqpClient,
		exporter:   exporter,
	}
}

func (s *DetectionService) builderConfig(threshold float64) sequence.Config {
	cfg := sequence.Config{
		Threshold:                s.cfg.Threshold,
		MaxIntervalDeviationDays: s.cfg.MaxIntervalDeviationDays,
		MinIntervalDays:          s.cfg.MinIntervalDays,
		AmountTolerance:          s.cfg.AmountTolerance,
		RefineMinMembers:         s.cfg.RefineMinMembers,
		Workers:                  s.cfg.ScoreWorkers,
	}
	if threshold > 0 {
		cfg.Threshold = threshold
	}
	return cfg
}

// Detect runs the full pipeline over raw records. runID may be empty, in
// which case one is generated. distances optionally seeds the provider with
// a precomputed table; threshold 0 means the configured default.
func (s *DetectionService) Detect(ctx context.Context, runID string, records []store.RawRecord, distances map[string]float64, threshold float64) (*Result, error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	started := time.Now()

	st, err := store.Load(records)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	provider := similarity.Default()
	if len(distances) > 0 {
		if err := provider.SeedTable(distances); err != nil {
			return nil, fmt.Errorf("seed distances: %w", err)
		}
		slog.InfoContext(ctx, "Seeded distance cache", "run_id", runID, "pairs", len(distances))
	}

	builderCfg := s.builderConfig(threshold)
	seqs, err := sequence.Build(ctx, st, provider, builderCfg)
	if err != nil {
		return nil, fmt.Errorf("build sequences: %w", err)
	}

	result := &Result{
		RunID:     runID,
		CreatedAt: started.UTC(),
		Threshold: builderCfg.Threshold,
		Store:     st,
		Sequences: seqs,
		Index:     sequence.NewIndex(seqs),
		Distances: provider.Export(),
	}

	slog.InfoContext(ctx, "Detection completed",
		"run_id", runID,
		"transactions", st.Len(),
		"sequences", len(seqs),
		"singletons", result.Singletons(),
		"threshold", builderCfg.Threshold,
		"cached_pairs", provider.CacheSize(),
		"duration_ms", time.Since(started).Milliseconds())

	return result, nil
}

// Persist saves the run to SQLite and, when an exporter is configured,
// pushes it out. Export failures are logged, not returned; the run is
// already durable locally.
func (s *DetectionService) Persist(ctx context.Context, result *Result) error {
	if s.storage == nil {
		slog.WarnContext(ctx, "Storage not available, skipping persist", "run_id", result.RunID)
		return nil
	}

	run := storage.Run{
		ID:        result.RunID,
		CreatedAt: result.CreatedAt,
		Threshold: result.Threshold,
		Sequences: result.Sequences,
	}
	if err := s.storage.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.ExportRun(ctx, run); err != nil {
			slog.ErrorContext(ctx, "Failed to export run",
				"run_id", result.RunID, "error", err)
			// Don't fail - the run is saved locally
		}
	}
	return nil
}

// PublishJob submits a detection job for the worker and returns the run id
// the result will be stored under.
func (s *DetectionService) PublishJob(ctx context.Context, transactionsPath, distancesPath string, threshold float64) (string, error) {
	if s.amqpClient == nil {
		return "", fmt.Errorf("amqp client not configured")
	}
	runID := uuid.NewString()
	msg := amqp.NewDetectJobMessage(runID, transactionsPath, distancesPath, threshold)
	if err := s.amqpClient.PublishDetectJob(ctx, msg); err != nil {
		return "", fmt.Errorf("publish job: %w", err)
	}
	return runID, nil
}

// Close closes storage and AMQP connections.
func (s *DetectionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close detection service: %v", errs)
	}
	return nil
}
