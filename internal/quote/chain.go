package quote

import (
	"context"
	"errors"
	"log/slog"
)

// Seeder is implemented by sources that can adopt an externally observed
// price as the starting point for future fetches.
type Seeder interface {
	Seed(symbol string, priceCents int64)
}

// Chain tries sources in order and returns the first price produced.
// With a Simulated generator last, a fetch never fails, so a refresh
// cycle degrades gracefully when the live provider is unreachable.
type Chain struct {
	sources []Source
	logger  *slog.Logger
}

// NewChain creates a chain over the given sources, tried front to back.
func NewChain(logger *slog.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, logger: logger}
}

// Fetch returns the first available price. ErrUnavailable from one source
// is absorbed and the next source is tried; it is only returned when every
// source fails. A price from an earlier source is fed to later Seeders so
// a fallback walk continues from the last real quote rather than jumping
// back to its own history.
func (c *Chain) Fetch(ctx context.Context, symbol string) (int64, error) {
	for i, src := range c.sources {
		price, err := src.Fetch(ctx, symbol)
		if err == nil {
			for _, later := range c.sources[i+1:] {
				if seeder, ok := later.(Seeder); ok {
					seeder.Seed(symbol, price)
				}
			}
			return price, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return 0, err
		}
		c.logger.Debug("price source unavailable, trying next",
			slog.String("symbol", symbol), slog.Int("source", i))
	}
	return 0, ErrUnavailable
}
