// Package storage persists detection runs to SQLite so results survive the
// batch process and can be served to later queries.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"sequenze/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var ErrRunNotFound = errors.New("run not found")

// Run is one persisted detection result.
type Run struct {
	ID        string
	CreatedAt time.Time
	Threshold float64
	Sequences []core.Sequence
}

// RunSummary is the listing view of a run, without members.
type RunSummary struct {
	ID               string
	CreatedAt        time.Time
	Threshold        float64
	TransactionCount int
	SequenceCount    int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys makes run deletion cascade to its rows
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// migrateSchema brings the run tables up to the embedded migration set. It
// opens its own short-lived connection so the repository's connection never
// sees a half-migrated schema.
func migrateSchema(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores a run with all its sequences and members in one
// transaction. A partially stored run is never visible.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run Run) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	txCount := 0
	for _, seq := range run.Sequences {
		txCount += seq.Size()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, threshold, transaction_count, sequence_count)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.Threshold, txCount, len(run.Sequences))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for pos, seq := range run.Sequences {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sequences (run_id, pos, representative, frequency, member_count)
			 VALUES (?, ?, ?, ?, ?)`,
			run.ID, pos, seq.Representative, seq.Frequency, seq.Size())
		if err != nil {
			return fmt.Errorf("insert sequence %d: %w", pos, err)
		}
		for mpos, t := range seq.Members {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO transactions (run_id, id, date, description, amount_cents, sequence_pos, member_pos)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				run.ID, t.ID, t.Date.Format("2006-01-02"), t.Description, t.Amount.Cents, pos, mpos)
			if err != nil {
				return fmt.Errorf("insert transaction %q: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Run saved to SQLite",
		"run_id", run.ID,
		"sequences", len(run.Sequences),
		"transactions", txCount)
	return nil
}

// ListRuns returns run summaries, newest first.
func (r *SQLiteRepository) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, threshold, transaction_count, sequence_count
		 FROM runs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var created string
		if err := rows.Scan(&s.ID, &created, &s.Threshold, &s.TransactionCount, &s.SequenceCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetRun reconstructs a full run with its partition.
func (r *SQLiteRepository) GetRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at, threshold FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &created, &run.Threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}

	seqRows, err := r.db.QueryContext(ctx,
		`SELECT pos, representative, frequency FROM sequences WHERE run_id = ? ORDER BY pos`, runID)
	if err != nil {
		return Run{}, fmt.Errorf("get sequences: %w", err)
	}
	defer seqRows.Close()

	for seqRows.Next() {
		var pos int
		var seq core.Sequence
		if err := seqRows.Scan(&pos, &seq.Representative, &seq.Frequency); err != nil {
			return Run{}, fmt.Errorf("scan sequence: %w", err)
		}
		run.Sequences = append(run.Sequences, seq)
	}
	if err := seqRows.Err(); err != nil {
		return Run{}, err
	}

	txRows, err := r.db.QueryContext(ctx,
		`SELECT id, date, description, amount_cents, sequence_pos
		 FROM transactions WHERE run_id = ? ORDER BY sequence_pos, member_pos`, runID)
	if err != nil {
		return Run{}, fmt.Errorf("get transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var t core.Transaction
		var date string
		var seqPos int
		if err := txRows.Scan(&t.ID, &date, &t.Description, &t.Amount.Cents, &seqPos); err != nil {
			return Run{}, fmt.Errorf("scan transaction: %w", err)
		}
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			return Run{}, fmt.Errorf("parse date %q: %w", date, err)
		}
		t.Date = core.Date{Time: day.UTC()}
		if seqPos < 0 || seqPos >= len(run.Sequences) {
			return Run{}, fmt.Errorf("transaction %q references sequence %d of %d", t.ID, seqPos, len(run.Sequences))
		}
		run.Sequences[seqPos].Members = append(run.Sequences[seqPos].Members, t)
	}
	return run, txRows.Err()
}

// LatestRun returns the most recent run, or ErrRunNotFound on an empty
// database.
func (r *SQLiteRepository) LatestRun(ctx context.Context) (Run, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r.GetRun(ctx, id)
}

// DeleteRun removes a run and, through the cascade, its rows.
func (r *SQLiteRepository) DeleteRun(ctx context.Context, runID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	return nil
}
