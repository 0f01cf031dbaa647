// Package engine runs the background price refresh loop.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/paperstreet/stocksim/internal/quote"
	"github.com/paperstreet/stocksim/internal/store"
)

// Persister writes the current in-memory state durably. The refresher
// saves once per completed cycle.
type Persister interface {
	Save() error
}

// Refresher periodically re-prices every tracked instrument. Each tick it
// walks the symbols present in the catalog, fetches a price through the
// source (a fallback chain, so an unreachable provider degrades to
// simulated prices instead of aborting), applies it, and persists once the
// cycle completes. Successive fetches are paced to respect the live
// provider's rate limit.
type Refresher struct {
	interval time.Duration
	pacing   time.Duration
	catalog  *store.CatalogStore
	source   quote.Source
	persist  Persister
	logger   *slog.Logger
}

// NewRefresher creates a Refresher. pacing is the delay between successive
// symbol fetches within a cycle; tests pass 0.
func NewRefresher(
	interval time.Duration,
	pacing time.Duration,
	catalog *store.CatalogStore,
	source quote.Source,
	persist Persister,
	logger *slog.Logger,
) *Refresher {
	return &Refresher{
		interval: interval,
		pacing:   pacing,
		catalog:  catalog,
		source:   source,
		persist:  persist,
		logger:   logger,
	}
}

// Start launches a background goroutine that runs a refresh cycle at the
// configured interval. It stops when ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RunCycle(ctx)
			}
		}
	}()
}

// RunCycle refreshes every symbol currently in the catalog once, then
// persists. A failed fetch for one symbol is logged and skipped; the rest
// of the cycle continues. Returns early only when ctx is cancelled.
func (r *Refresher) RunCycle(ctx context.Context) {
	symbols := r.catalog.Symbols()
	if len(symbols) == 0 {
		return
	}

	start := time.Now()
	updated := 0
	for i, symbol := range symbols {
		if i > 0 && !r.pace(ctx) {
			return
		}

		price, err := r.source.Fetch(ctx, symbol)
		if err != nil {
			r.logger.Warn("refresh fetch failed, keeping prior price",
				slog.String("symbol", symbol), slog.String("error", err.Error()))
			continue
		}

		r.catalog.ApplyRefresh(symbol, price, time.Now())
		updated++
	}

	if err := r.persist.Save(); err != nil {
		r.logger.Error("persist after refresh cycle failed",
			slog.String("error", err.Error()))
	}

	r.logger.Info("refresh cycle complete",
		slog.Int("symbols", len(symbols)),
		slog.Int("updated", updated),
		slog.Duration("duration", time.Since(start)),
	)
}

// pace waits the inter-symbol delay. Returns false when ctx was cancelled
// during the wait.
func (r *Refresher) pace(ctx context.Context) bool {
	if r.pacing <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(r.pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
