package similarity

import (
	"errors"
	"testing"

	"sequenze/internal/cache"
	"sequenze/internal/core"
)

func TestPairKeyCanonical(t *testing.T) {
	if PairKey("b", "a") != PairKey("a", "b") {
		t.Fatalf("pair key not symmetric")
	}
	if PairKey("a", "b") != "1:a|b" {
		t.Fatalf("unexpected key %q", PairKey("a", "b"))
	}
}

func TestPairKeySeparatorInDescription(t *testing.T) {
	// Free-text descriptions may contain the separator; pairs that join to
	// the same text must still get distinct keys.
	cases := []struct {
		a1, b1 string
		a2, b2 string
	}{
		{"a", "b|c", "a|b", "c"},
		{"PAYPAL *SPOTIFY", "PAYPAL *|SPOTIFY", "PAYPAL *", "SPOTIFY|PAYPAL *SPOTIFY"},
	}
	for i, c := range cases {
		if PairKey(c.a1, c.b1) == PairKey(c.a2, c.b2) {
			t.Fatalf("case %d: distinct pairs share key %q", i, PairKey(c.a1, c.b1))
		}
	}
}

func TestDistanceSeparatorPairsIndependent(t *testing.T) {
	calls := 0
	p := NewProvider(cache.NewLRUCache[float64](16), func(a, b string) float64 {
		calls++
		if a == "a" || b == "a" {
			return 0.9
		}
		return 0.1
	})

	first, err := p.Distance("a", "b|c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := p.Distance("a|b", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != 0.9 || second != 0.1 {
		t.Fatalf("expected 0.9 and 0.1, got %v and %v", first, second)
	}
	if calls != 2 {
		t.Fatalf("expected both pairs to reach the metric, got %d call(s)", calls)
	}
	if p.CacheSize() != 2 {
		t.Fatalf("expected 2 cached pairs, got %d", p.CacheSize())
	}
}

func TestDistanceSymmetry(t *testing.T) {
	p := Default()
	ab, err := p.Distance("Netflix 01", "Netflix 02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := p.Distance("Netflix 02", "Netflix 01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ab != ba {
		t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
	}
	if ab < 0 || ab > 1 {
		t.Fatalf("score out of range: %v", ab)
	}
}

func TestDistanceIdentical(t *testing.T) {
	p := Default()
	score, err := p.Distance("Coffee Shop", "Coffee Shop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1 {
		t.Fatalf("expected 1 for identical strings, got %v", score)
	}
}

func TestDistanceEmptyInput(t *testing.T) {
	p := Default()
	if _, err := p.Distance("", "a"); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if _, err := p.Distance("a", "   "); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}

func TestDistanceMemoizes(t *testing.T) {
	calls := 0
	p := NewProvider(cache.NewLRUCache[float64](16), func(a, b string) float64 {
		calls++
		return 0.5
	})
	for i := 0; i < 3; i++ {
		if _, err := p.Distance("a", "b"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Reversed argument order must hit the same entry
	if _, err := p.Distance("b", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 metric call, got %d", calls)
	}
	if p.CacheSize() != 1 {
		t.Fatalf("expected 1 cached pair, got %d", p.CacheSize())
	}
}

func TestSeed(t *testing.T) {
	p := NewProvider(cache.NewLRUCache[float64](16), func(a, b string) float64 {
		t.Fatalf("metric should not be called for seeded pair")
		return 0
	})
	n, err := p.Seed([]Pair{{A: "Netflix 02", B: "Netflix 01", Score: 0.95}})
	if err != nil || n != 1 {
		t.Fatalf("seed failed: %d %v", n, err)
	}
	score, err := p.Distance("Netflix 01", "Netflix 02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.95 {
		t.Fatalf("expected seeded 0.95, got %v", score)
	}
}

func TestSeedInvalid(t *testing.T) {
	p := Default()
	if _, err := p.Seed([]Pair{{A: "", B: "b", Score: 0.5}}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if _, err := p.Seed([]Pair{{A: "a", B: "b", Score: 1.5}}); !errors.Is(err, ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	p := Default()
	if _, err := p.Distance("Netflix 01", "Netflix 02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table := p.Export()
	if len(table) != 1 {
		t.Fatalf("expected 1 exported pair, got %d", len(table))
	}

	fresh := NewProvider(cache.NewLRUCache[float64](16), func(a, b string) float64 {
		t.Fatalf("metric should not be called after reload")
		return 0
	})
	if err := fresh.SeedTable(table); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	want, _ := p.Distance("Netflix 01", "Netflix 02")
	got, err := fresh.Distance("Netflix 01", "Netflix 02")
	if err != nil || got != want {
		t.Fatalf("round trip mismatch: %v %v", got, err)
	}
}

func TestJaroWinklerPrefixBoost(t *testing.T) {
	// Same merchant with differing suffixes must score well above unrelated
	// descriptors.
	same := JaroWinkler("NETFLIX.COM 866-579-7172", "NETFLIX.COM 866-579-7173")
	other := JaroWinkler("NETFLIX.COM 866-579-7172", "CORNER COFFEE SHOP")
	if same <= other {
		t.Fatalf("expected suffix variant (%v) to outscore unrelated (%v)", same, other)
	}
	if same < 0.9 {
		t.Fatalf("expected near-identical descriptors to score >= 0.9, got %v", same)
	}
}
