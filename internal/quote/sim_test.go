package quote

import (
	"context"
	"testing"

	"pgregory.net/rapid"
)

func TestSimulated_DeterministicBase(t *testing.T) {
	a := NewSimulated(1)
	b := NewSimulated(2)

	// The base price depends only on the symbol, not the seed.
	priceA, err := a.Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	priceB, _ := b.Fetch(context.Background(), "AAPL")
	if priceA != priceB {
		t.Errorf("base price differs across generators: %d vs %d", priceA, priceB)
	}
	if priceA != BasePriceCents("AAPL") {
		t.Errorf("first fetch = %d, want base %d", priceA, BasePriceCents("AAPL"))
	}
}

func TestSimulated_BasePriceBounded(t *testing.T) {
	for _, sym := range []string{"AAPL", "MSFT", "GOOGL", "X", "ZZZZZZZZZZ"} {
		base := BasePriceCents(sym)
		if base < 0 || base >= 100000 {
			t.Errorf("BasePriceCents(%s) = %d, want [0, 100000)", sym, base)
		}
		if base%100 != 0 {
			t.Errorf("BasePriceCents(%s) = %d, want whole dollars", sym, base)
		}
	}
}

func TestSimulated_WalkReproducible(t *testing.T) {
	a := NewSimulated(42)
	b := NewSimulated(42)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		pa, _ := a.Fetch(ctx, "AAPL")
		pb, _ := b.Fetch(ctx, "AAPL")
		if pa != pb {
			t.Fatalf("walk diverged at step %d: %d vs %d", i, pa, pb)
		}
	}
}

func TestSimulated_Seed(t *testing.T) {
	s := NewSimulated(42)
	ctx := context.Background()

	s.Seed("AAPL", 15000)
	price, _ := s.Fetch(ctx, "AAPL")

	// The next fetch walks from the seeded price, not the hashed base.
	lo := int64(15000 * 0.975)
	hi := int64(15000*1.025) + 1
	if price < lo || price > hi {
		t.Errorf("price %d not within ±2.5%% of seeded 15000", price)
	}
}

// TestProperty_SimulatedPerturbationBounded verifies every step of the
// walk stays within ±2.5% of the previous price.
func TestProperty_SimulatedPerturbationBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		symbol := rapid.SampledFrom([]string{"AAPL", "MSFT", "TSLA", "JPM"}).Draw(t, "symbol")
		steps := rapid.IntRange(1, 50).Draw(t, "steps")

		s := NewSimulated(seed)
		ctx := context.Background()

		prev, err := s.Fetch(ctx, symbol)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		for i := 0; i < steps; i++ {
			next, err := s.Fetch(ctx, symbol)
			if err != nil {
				t.Fatalf("Fetch failed at step %d: %v", i, err)
			}
			// Allow a half-cent of rounding slack around the ±2.5% band.
			lo := float64(prev)*0.975 - 0.5
			hi := float64(prev)*1.025 + 0.5
			if float64(next) < lo || float64(next) > hi {
				t.Fatalf("step %d moved %d → %d, outside ±2.5%%", i, prev, next)
			}
			prev = next
		}
	})
}
