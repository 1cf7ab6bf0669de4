package sequence

import (
	"fmt"

	"sequenze/internal/core"
)

// Index is the read-only lookup from transaction id to its sequence. It is
// derived from one Build result and rebuilt wholesale after a re-run, never
// patched incrementally.
type Index struct {
	sequences []core.Sequence
	byID      map[string]int
}

// NewIndex builds the lookup over a partition.
func NewIndex(sequences []core.Sequence) *Index {
	ix := &Index{
		sequences: sequences,
		byID:      make(map[string]int),
	}
	for si, seq := range sequences {
		for _, t := range seq.Members {
			ix.byID[t.ID] = si
		}
	}
	return ix
}

// Sequences returns the partition in build order.
func (ix *Index) Sequences() []core.Sequence {
	return ix.sequences
}

// Len returns the number of indexed transactions.
func (ix *Index) Len() int {
	return len(ix.byID)
}

// SequenceOf returns the sequence the transaction belongs to.
func (ix *Index) SequenceOf(id string) (core.Sequence, error) {
	si, ok := ix.byID[id]
	if !ok {
		return core.Sequence{}, fmt.Errorf("%w: %q", core.ErrUnknownTransaction, id)
	}
	return ix.sequences[si], nil
}

// RestOfSequence returns the other members of the transaction's sequence,
// date ascending. A singleton yields an empty result, which is a valid
// answer, not an error. An id the index has never seen is an error: it means
// the caller holds a stale index or a foreign transaction.
func (ix *Index) RestOfSequence(id string) ([]core.Transaction, error) {
	seq, err := ix.SequenceOf(id)
	if err != nil {
		return nil, err
	}
	rest := make([]core.Transaction, 0, len(seq.Members)-1)
	for _, t := range seq.Members {
		if t.ID != id {
			rest = append(rest, t)
		}
	}
	return rest, nil
}
