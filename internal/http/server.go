// Package http exposes persisted detection runs over a JSON query API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sequenze/internal/cache"
	"sequenze/internal/middleware/trace"
	"sequenze/internal/sequence"
	"sequenze/internal/storage"
)

// RunReader is the slice of the repository the API needs.
type RunReader interface {
	ListRuns(ctx context.Context) ([]storage.RunSummary, error)
	GetRun(ctx context.Context, runID string) (storage.Run, error)
	LatestRun(ctx context.Context) (storage.Run, error)
}

// runView is a loaded run with its query index, cached per run id so
// repeated lookups skip the database reconstruction.
type runView struct {
	run   storage.Run
	index *sequence.Index
}

type Server struct {
	http.Server
	runs  RunReader
	views *cache.LRUCache[*runView]

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, runs RunReader) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		runs:  runs,
		views: cache.NewLRUCache[*runView](32),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/latest", s.handleLatestRun)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/transactions/{txid}/rest", s.handleRestOfSequence)

	s.Server.Handler = trace.NewMiddleware().Wrap(mux)

	return s
}

func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// view loads the run and its index, through the cache. Runs are immutable
// once written, so cached views never go stale.
func (s *Server) view(ctx context.Context, runID string) (*runView, error) {
	if v, ok := s.views.Get(runID); ok {
		return v, nil
	}
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	v := &runView{run: run, index: sequence.NewIndex(run.Sequences)}
	s.views.Set(runID, v)
	return v, nil
}
