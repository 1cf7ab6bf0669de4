// Package sequence implements the detection core: a single-pass greedy
// clustering of transactions by description similarity, a consistency
// refinement pass, and the index serving rest-of-sequence queries.
package sequence

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"sequenze/internal/core"
	"sequenze/internal/store"
)

// DistanceProvider scores two non-empty descriptions in [0,1], 1 meaning
// identical. Implementations must be symmetric and safe for concurrent use.
type DistanceProvider interface {
	Distance(a, b string) (float64, error)
}

// Config holds the detection policy knobs.
type Config struct {
	// Threshold is the minimum similarity for joining an open sequence.
	Threshold float64

	// MaxIntervalDeviationDays is how far a member interval may stray from
	// the sequence's mean interval before the sequence is split.
	MaxIntervalDeviationDays int

	// MinIntervalDays is the floor of the interval band; two charges closer
	// than this do not look like a billing period.
	MinIntervalDays int

	// AmountTolerance is the relative band around a segment's first amount;
	// 0.5 allows 50% deviation.
	AmountTolerance float64

	// RefineMinMembers is the minimum sequence size that undergoes the
	// timing/amount refinement. Smaller groups keep their description-based
	// grouping as is.
	RefineMinMembers int

	// Workers bounds the goroutines scoring one transaction against the open
	// sequences. Values <= 1 mean sequential scoring. Parallelism only
	// speeds scoring up; selection is always sequential, so the partition is
	// identical either way.
	Workers int
}

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:                0.85,
		MaxIntervalDeviationDays: 3,
		MinIntervalDays:          4,
		AmountTolerance:          0.5,
		RefineMinMembers:         4,
		Workers:                  1,
	}
}

func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", c.Threshold)
	}
	if c.AmountTolerance < 0 {
		return fmt.Errorf("amount tolerance %v negative", c.AmountTolerance)
	}
	if c.MinIntervalDays < 0 || c.MaxIntervalDeviationDays < 0 {
		return fmt.Errorf("interval bounds must not be negative")
	}
	return nil
}

// openSequence is a cluster under construction.
type openSequence struct {
	members        []core.Transaction // date order; Build appends in processing order
	representative string
	counts         map[string]int
	firstSeen      map[string]int // description -> arrival ordinal, for tie-breaks
}

func newOpenSequence(t core.Transaction) *openSequence {
	return &openSequence{
		members:        []core.Transaction{t},
		representative: t.Description,
		counts:         map[string]int{t.Description: 1},
		firstSeen:      map[string]int{t.Description: 0},
	}
}

func (o *openSequence) add(t core.Transaction) {
	o.members = append(o.members, t)
	if _, seen := o.counts[t.Description]; !seen {
		o.firstSeen[t.Description] = len(o.firstSeen)
	}
	o.counts[t.Description]++
	o.updateRepresentative()
}

// updateRepresentative moves the representative to the most frequent member
// description so later comparisons track the cluster's central tendency.
// Ties go to the earliest-seen description, never map order.
func (o *openSequence) updateRepresentative() {
	best := o.representative
	bestCount := o.counts[best]
	bestSeen := o.firstSeen[best]
	for desc, count := range o.counts {
		seen := o.firstSeen[desc]
		if count > bestCount || (count == bestCount && seen < bestSeen) {
			best, bestCount, bestSeen = desc, count, seen
		}
	}
	o.representative = best
}

// Build partitions the store's transactions into sequences. Every transaction
// lands in exactly one sequence; an empty store yields an empty partition.
// The result is deterministic for a given input and config.
func Build(ctx context.Context, st *store.Store, provider DistanceProvider, cfg Config) ([]core.Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var opens []*openSequence
	for _, t := range st.Sorted() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := scoreAgainst(ctx, t, opens, provider, cfg.Workers)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", t.ID, err)
		}
		if best := selectSequence(opens, scores, cfg.Threshold); best >= 0 {
			opens[best].add(t)
		} else {
			opens = append(opens, newOpenSequence(t))
		}
	}

	var out []core.Sequence
	for _, o := range opens {
		for _, members := range refine(o.members, cfg) {
			out = append(out, finish(members))
		}
	}
	return out, nil
}

// scoreAgainst computes t's similarity to every open sequence's
// representative. With more than one worker the scores are computed
// concurrently into an indexed slice; the caller still selects sequentially.
func scoreAgainst(ctx context.Context, t core.Transaction, opens []*openSequence, provider DistanceProvider, workers int) ([]float64, error) {
	scores := make([]float64, len(opens))
	if workers <= 1 || len(opens) < 2 {
		for i, o := range opens {
			score, err := provider.Distance(t.Description, o.representative)
			if err != nil {
				return nil, err
			}
			scores[i] = score
		}
		return scores, nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, o := range opens {
		g.Go(func() error {
			score, err := provider.Distance(t.Description, o.representative)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// selectSequence picks the best-scoring open sequence at or above the
// threshold, or -1. Ties prefer the sequence with more members, then the one
// created earlier. Strict comparisons walking in creation order make the
// earliest winner implicit.
func selectSequence(opens []*openSequence, scores []float64, threshold float64) int {
	best := -1
	for i := range opens {
		if scores[i] < threshold {
			continue
		}
		if best < 0 || scores[i] > scores[best] ||
			(scores[i] == scores[best] && len(opens[i].members) > len(opens[best].members)) {
			best = i
		}
	}
	return best
}

// refine splits a candidate sequence on timing gaps outside the interval
// band and on amount jumps outside the tolerance band. Description similarity
// is necessary but not sufficient evidence of recurrence: a gym and a
// one-off purchase at the same merchant read alike but do not repeat alike.
// Groups below RefineMinMembers pass through unchanged; with too few points
// the interval statistics mean nothing.
func refine(members []core.Transaction, cfg Config) [][]core.Transaction {
	if len(members) < cfg.RefineMinMembers {
		return [][]core.Transaction{members}
	}

	low, high := intervalBand(members, cfg)
	segments := make([][]core.Transaction, 0, 1)
	current := []core.Transaction{members[0]}
	for i := 1; i < len(members); i++ {
		interval := float64(members[i-1].Date.DaysUntil(members[i].Date))
		sameAmount := current[0].Amount.WithinTolerance(members[i].Amount, cfg.AmountTolerance)
		if interval < low || interval > high || !sameAmount {
			segments = append(segments, current)
			current = []core.Transaction{members[i]}
			// Rebase the band on what is left, as the cadence may genuinely
			// have changed (e.g. a plan moving from monthly to yearly).
			low, high = intervalBand(members[i:], cfg)
			continue
		}
		current = append(current, members[i])
	}
	return append(segments, current)
}

// intervalBand centers the accepted interval band on the median member
// interval. The median, unlike the mean, is not dragged off the true cadence
// by a short burst of extra charges.
func intervalBand(members []core.Transaction, cfg Config) (low, high float64) {
	median := medianIntervalDays(members)
	low = median - float64(cfg.MaxIntervalDeviationDays)
	if floor := float64(cfg.MinIntervalDays); low < floor {
		low = floor
	}
	high = median + float64(cfg.MaxIntervalDeviationDays)
	return low, high
}

func medianIntervalDays(members []core.Transaction) float64 {
	if len(members) < 2 {
		return 0
	}
	intervals := make([]int, len(members)-1)
	for i := 1; i < len(members); i++ {
		intervals[i-1] = members[i-1].Date.DaysUntil(members[i].Date)
	}
	sort.Ints(intervals)
	n := len(intervals)
	if n%2 == 1 {
		return float64(intervals[n/2])
	}
	return float64(intervals[n/2-1]+intervals[n/2]) / 2
}

func finish(members []core.Transaction) core.Sequence {
	counts := make(map[string]int, len(members))
	firstSeen := make(map[string]int, len(members))
	rep := members[0].Description
	for _, t := range members {
		if _, seen := counts[t.Description]; !seen {
			firstSeen[t.Description] = len(firstSeen)
		}
		counts[t.Description]++
	}
	for desc, count := range counts {
		if count > counts[rep] || (count == counts[rep] && firstSeen[desc] < firstSeen[rep]) {
			rep = desc
		}
	}
	return core.Sequence{
		Members:        members,
		Representative: rep,
		Frequency:      core.MeanIntervalDays(members),
	}
}
