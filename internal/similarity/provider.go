// Package similarity computes and caches description similarity scores.
//
// Scores are Jaro-Winkler in [0,1], 1 meaning identical. Jaro-Winkler suits
// merchant descriptors well: it rewards matching prefixes, and descriptors
// mostly differ in trailing date or reference-number suffixes.
package similarity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xrash/smetrics"

	"sequenze/internal/cache"
	"sequenze/internal/core"
)

// DefaultCacheSize bounds the score cache. A run over n distinct descriptions
// needs at most n*(n-1)/2 entries; 1<<20 covers ~1400 distinct descriptions
// with no evictions, far beyond a personal transaction history.
const DefaultCacheSize = 1 << 20

var ErrInvalidScore = errors.New("similarity score outside [0,1]")

// Metric computes a similarity score in [0,1] for two non-empty strings.
type Metric func(a, b string) float64

// JaroWinkler is the default metric.
func JaroWinkler(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}

// Pair is a cached similarity score between two descriptions. It is the unit
// of the precomputed tables the I/O layer may persist.
type Pair struct {
	A     string  `json:"description_a"`
	B     string  `json:"description_b"`
	Score float64 `json:"score"`
}

// Provider answers distance queries from the cache, computing and memoizing
// on miss. The cache is injected; a provider never owns hidden global state.
// Safe for concurrent use: the metric is pure, so two workers racing on the
// same pair converge to the same value.
type Provider struct {
	cache  cache.Cache[float64]
	metric Metric
}

// NewProvider creates a provider over the given cache and metric.
func NewProvider(c cache.Cache[float64], m Metric) *Provider {
	return &Provider{cache: c, metric: m}
}

// Default returns a Jaro-Winkler provider with a fresh bounded cache.
func Default() *Provider {
	return NewProvider(cache.NewLRUCache[float64](DefaultCacheSize), JaroWinkler)
}

// PairKey returns the canonical cache key for two descriptions. The pair is
// ordered lexicographically, so lookups are symmetric. The first component is
// length-prefixed: descriptions are free text and may themselves contain the
// separator, and a bare join would map distinct pairs to the same key.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%s|%s", len(a), a, b)
}

// Distance returns the similarity score for two descriptions. Both must be
// non-empty; unseen pairs are computed on demand and memoized, never an
// error.
func (p *Provider) Distance(a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, core.ErrEmptyDescription
	}
	key := PairKey(a, b)
	if score, ok := p.cache.Get(key); ok {
		return score, nil
	}
	score := p.metric(a, b)
	p.cache.Set(key, score)
	return score, nil
}

// Seed loads precomputed pairs into the cache, canonicalizing each key.
// Returns the number of pairs loaded; stops at the first invalid pair.
func (p *Provider) Seed(pairs []Pair) (int, error) {
	for i, pr := range pairs {
		if strings.TrimSpace(pr.A) == "" || strings.TrimSpace(pr.B) == "" {
			return i, fmt.Errorf("pair %d: %w", i, core.ErrEmptyDescription)
		}
		if pr.Score < 0 || pr.Score > 1 {
			return i, fmt.Errorf("pair %d: %w", i, ErrInvalidScore)
		}
		p.cache.Set(PairKey(pr.A, pr.B), pr.Score)
	}
	return len(pairs), nil
}

// SeedTable loads a canonical-key table, as produced by Export. Keys are
// inserted as-is.
func (p *Provider) SeedTable(table map[string]float64) error {
	for key, score := range table {
		if score < 0 || score > 1 {
			return fmt.Errorf("key %q: %w", key, ErrInvalidScore)
		}
		p.cache.Set(key, score)
	}
	return nil
}

// Export returns the cache contents keyed canonically, for persisting and
// reloading through SeedTable.
func (p *Provider) Export() map[string]float64 {
	return p.cache.Snapshot()
}

// CacheSize returns the number of memoized pairs.
func (p *Provider) CacheSize() int {
	return p.cache.Size()
}
