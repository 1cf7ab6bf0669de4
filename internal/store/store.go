// Package store loads raw transaction records into validated, immutable
// transactions and indexes them for the detector.
package store

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"sequenze/internal/core"
)

// Date layouts accepted at load time: ISO-8601 plus the US layout older bank
// exports use.
var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// RawRecord is one untyped input record as the I/O layer hands it over.
// Amount arrives as json.Number so decimal values keep their exact text
// instead of going through a float64.
type RawRecord struct {
	ID          string      `json:"id,omitempty"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
}

// Store owns the validated transaction collection. It is immutable after
// Load and safe for concurrent readers. Iteration order is input order, which
// the builder's tie-breaking relies on.
type Store struct {
	all           []core.Transaction
	byID          map[string]int
	byDescription map[string][]int
	byDate        map[string][]int
}

// Load validates every record and builds the store. Any invalid record aborts
// the whole load with a MalformedRecordError naming its position; a partially
// validated store is never returned.
func Load(records []RawRecord) (*Store, error) {
	s := &Store{
		all:           make([]core.Transaction, 0, len(records)),
		byID:          make(map[string]int, len(records)),
		byDescription: make(map[string][]int),
		byDate:        make(map[string][]int),
	}
	for pos, rec := range records {
		t, err := parseRecord(rec)
		if err != nil {
			return nil, &core.MalformedRecordError{Pos: pos, Err: err}
		}
		if t.ID == "" {
			t.ID = s.assignID(t)
		} else if _, taken := s.byID[t.ID]; taken {
			return nil, &core.MalformedRecordError{Pos: pos, Err: fmt.Errorf("%w: %q", core.ErrDuplicateID, t.ID)}
		}
		idx := len(s.all)
		s.all = append(s.all, t)
		s.byID[t.ID] = idx
		s.byDescription[t.Description] = append(s.byDescription[t.Description], idx)
		dateKey := t.Date.Format("2006-01-02")
		s.byDate[dateKey] = append(s.byDate[dateKey], idx)
	}
	return s, nil
}

func parseRecord(rec RawRecord) (core.Transaction, error) {
	if strings.TrimSpace(rec.Description) == "" {
		return core.Transaction{}, core.ErrEmptyDescription
	}
	date, err := parseDate(rec.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(rec.Amount.String()) == "" {
		return core.Transaction{}, fmt.Errorf("%w: missing", core.ErrInvalidAmount)
	}
	amount, err := core.ParseAmount(rec.Amount.String())
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:          strings.TrimSpace(rec.ID),
		Date:        date,
		Description: rec.Description,
		Amount:      amount,
	}, nil
}

func parseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, fmt.Errorf("%w: missing", core.ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.Date{Time: t.UTC()}, nil
		}
	}
	return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

// assignID derives a stable id from the record content, de-duplicated with an
// ordinal suffix so identical records still get distinct ids.
func (s *Store) assignID(t core.Transaction) string {
	sum := md5.Sum([]byte(t.Date.Format("2006-01-02") + t.Description + t.Amount.String()))
	id := hex.EncodeToString(sum[:])
	if _, taken := s.byID[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, taken := s.byID[candidate]; !taken {
			return candidate
		}
	}
}

// Len returns the number of transactions.
func (s *Store) Len() int {
	return len(s.all)
}

// All returns the transactions in input order.
func (s *Store) All() []core.Transaction {
	out := make([]core.Transaction, len(s.all))
	copy(out, s.all)
	return out
}

// ByID looks up a transaction.
func (s *Store) ByID(id string) (core.Transaction, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return core.Transaction{}, false
	}
	return s.all[idx], true
}

// ByDescription returns the transactions carrying exactly this description,
// in input order.
func (s *Store) ByDescription(description string) []core.Transaction {
	return s.pick(s.byDescription[description])
}

// ByDate returns the transactions on the given day, in input order.
func (s *Store) ByDate(d core.Date) []core.Transaction {
	return s.pick(s.byDate[d.Format("2006-01-02")])
}

func (s *Store) pick(idxs []int) []core.Transaction {
	out := make([]core.Transaction, len(idxs))
	for i, idx := range idxs {
		out[i] = s.all[idx]
	}
	return out
}

// Sorted returns a copy ordered by date ascending, input order breaking ties.
// This is the deterministic processing order the builder runs in.
func (s *Store) Sorted() []core.Transaction {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
