package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sequenze/internal/core"
	"sequenze/internal/log"
	"sequenze/internal/storage"
)

const dateLayout = "2006-01-02"

type transactionView struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type sequenceView struct {
	Representative string            `json:"representative"`
	Frequency      float64           `json:"frequency_days"`
	Members        []transactionView `json:"members"`
}

type runDetailView struct {
	ID        string         `json:"id"`
	CreatedAt string         `json:"created_at"`
	Threshold float64        `json:"threshold"`
	Sequences []sequenceView `json:"sequences"`
}

type runSummaryView struct {
	ID               string  `json:"id"`
	CreatedAt        string  `json:"created_at"`
	Threshold        float64 `json:"threshold"`
	TransactionCount int     `json:"transaction_count"`
	SequenceCount    int     `json:"sequence_count"`
}

func toTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		Date:        t.Date.Format(dateLayout),
		Description: t.Description,
		Amount:      t.Amount.String(),
	}
}

func toRunDetailView(run storage.Run) runDetailView {
	out := runDetailView{
		ID:        run.ID,
		CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Threshold: run.Threshold,
		Sequences: make([]sequenceView, 0, len(run.Sequences)),
	}
	for _, s := range run.Sequences {
		sv := sequenceView{
			Representative: s.Representative,
			Frequency:      s.Frequency,
			Members:        make([]transactionView, 0, len(s.Members)),
		}
		for _, m := range s.Members {
			sv.Members = append(sv.Members, toTransactionView(m))
		}
		out.Sequences = append(out.Sequences, sv)
	}
	return out
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.runs.ListRuns(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	out := make([]runSummaryView, 0, len(summaries))
	for _, rs := range summaries {
		out = append(out, runSummaryView{
			ID:               rs.ID,
			CreatedAt:        rs.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			Threshold:        rs.Threshold,
			TransactionCount: rs.TransactionCount,
			SequenceCount:    rs.SequenceCount,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.LatestRun(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "no runs recorded")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load latest run", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, toRunDetailView(run))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	v, err := s.view(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load run", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, toRunDetailView(v.run))
}

func (s *Server) handleRestOfSequence(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	txID := r.PathValue("txid")

	v, err := s.view(r.Context(), runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load run", "run_id", runID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	rest, err := v.index.RestOfSequence(txID)
	if err != nil {
		if errors.Is(err, core.ErrUnknownTransaction) {
			writeError(w, http.StatusNotFound, "transaction not found in run")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to resolve sequence", "run_id", runID, "transaction_id", txID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve sequence")
		return
	}

	out := make([]transactionView, 0, len(rest))
	for _, t := range rest {
		out = append(out, toTransactionView(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transaction_id": txID,
		"rest":           out,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response",
			log.FieldComponent, log.ComponentAPI,
			log.FieldError, err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
