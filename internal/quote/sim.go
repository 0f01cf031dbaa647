package quote

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
)

// Simulated is a deterministic price generator used when the live provider
// is unavailable. The first fetch for a symbol derives a base price from a
// stable hash of the symbol; later fetches perturb the previous price by a
// bounded symmetric random percentage. It never fails.
type Simulated struct {
	mu   sync.Mutex
	last map[string]int64 // symbol → last generated price in cents
	rng  *rand.Rand
}

// NewSimulated creates a generator seeded with the given value. Tests pass
// a fixed seed to get a reproducible walk.
func NewSimulated(seed int64) *Simulated {
	return &Simulated{
		last: make(map[string]int64),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Fetch returns a price for the symbol. The base price is the symbol's
// FNV-1a hash reduced to under $1000; subsequent calls move the previous
// price by up to ±2.5%, rounded to whole cents.
func (s *Simulated) Fetch(_ context.Context, symbol string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.last[symbol]
	if !ok {
		base := BasePriceCents(symbol)
		s.last[symbol] = base
		return base, nil
	}

	// Uniform in [-0.025, 0.025).
	changePct := (s.rng.Float64() - 0.5) * 0.05
	next := int64(math.Round(float64(last) * (1 + changePct)))
	s.last[symbol] = next
	return next, nil
}

// Seed records an externally observed price so the walk continues from it
// instead of the hashed base. The refresher seeds the generator whenever
// the live source succeeds, keeping fallback prices continuous.
func (s *Simulated) Seed(symbol string, priceCents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[symbol] = priceCents
}

// BasePriceCents derives the deterministic starting price for a symbol:
// its FNV-1a hash modulo 1000, in dollars.
func BasePriceCents(symbol string) int64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return int64(h.Sum32()%1000) * 100
}
