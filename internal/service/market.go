package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/quote"
	"github.com/paperstreet/stocksim/internal/store"
)

// OverviewFetcher looks up descriptive company fields for a symbol from
// the external provider.
type OverviewFetcher interface {
	CompanyOverview(ctx context.Context, symbol string) (map[string]string, error)
}

// AddInstrumentResult is the outcome of adding an instrument. Fetched is
// true when the price came from the quote chain rather than the request.
type AddInstrumentResult struct {
	Instrument *domain.Instrument
	Fetched    bool
	PersistErr error
}

// MarketService handles the instrument catalog: admin price-sets, market
// listings, price lookups, and company info passthrough.
type MarketService struct {
	catalog   *store.CatalogStore
	source    quote.Source
	overview  OverviewFetcher
	persister Persister
	logger    *slog.Logger
}

// NewMarketService creates a new MarketService. overview may be nil when
// no live provider is configured; Info then reports unavailable.
func NewMarketService(
	catalog *store.CatalogStore,
	source quote.Source,
	overview OverviewFetcher,
	persister Persister,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		catalog:   catalog,
		source:    source,
		overview:  overview,
		persister: persister,
		logger:    logger,
	}
}

// NormalizeSymbol upper-cases a symbol and validates its shape.
func NormalizeSymbol(symbol string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if !symbolRegex.MatchString(normalized) {
		return "", &domain.ValidationError{
			Message: "symbol must match ^[A-Z0-9.\\-]{1,10}$",
		}
	}
	return normalized, nil
}

// AddInstrument adds a symbol to the catalog at the given price, or at a
// price from the quote chain when priceDollars is nil. Re-adding an
// existing symbol re-baselines it: percent change resets to zero and the
// history restarts. Admin gating is the caller's concern.
func (s *MarketService) AddInstrument(ctx context.Context, symbol string, priceDollars *float64) (*AddInstrumentResult, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	var priceCents int64
	fetched := false
	if priceDollars != nil {
		if *priceDollars < 0 {
			return nil, &domain.ValidationError{Message: "price must be >= 0"}
		}
		priceCents, err = domain.DollarsToCents(*priceDollars)
		if err != nil {
			return nil, &domain.ValidationError{
				Message: "price must have at most 2 decimal places",
			}
		}
	} else {
		priceCents, err = s.source.Fetch(ctx, normalized)
		if err != nil {
			return nil, err
		}
		fetched = true
	}

	s.catalog.Upsert(normalized, priceCents, time.Now())
	inst, err := s.catalog.Get(normalized)
	if err != nil {
		return nil, err
	}

	res := &AddInstrumentResult{Instrument: inst, Fetched: fetched}
	if err := s.persister.Save(); err != nil {
		s.logger.Error("persist after add instrument failed",
			slog.String("symbol", normalized), slog.String("error", err.Error()))
		res.PersistErr = err
	}
	return res, nil
}

// Instrument returns a copy of the instrument for a symbol.
func (s *MarketService) Instrument(symbol string) (*domain.Instrument, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return s.catalog.Get(normalized)
}

// Market returns all tracked instruments sorted by symbol.
func (s *MarketService) Market() []*domain.Instrument {
	return s.catalog.List()
}

// Info returns the provider's company overview for a symbol. It does not
// require the symbol to be tracked in the catalog.
func (s *MarketService) Info(ctx context.Context, symbol string) (map[string]string, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if s.overview == nil {
		return nil, quote.ErrUnavailable
	}
	return s.overview.CompanyOverview(ctx, normalized)
}
