package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/quote"
	"github.com/paperstreet/stocksim/internal/store"
)

// fixedSource always returns the same price.
type fixedSource struct {
	price int64
	err   error
	calls int
}

func (s *fixedSource) Fetch(_ context.Context, _ string) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.price, nil
}

// fixedOverview returns canned company fields.
type fixedOverview struct {
	fields map[string]string
	err    error
}

func (o *fixedOverview) CompanyOverview(_ context.Context, _ string) (map[string]string, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.fields, nil
}

func newMarketService(source quote.Source, overview OverviewFetcher) (*MarketService, *store.CatalogStore, *fakePersister) {
	catalog := store.NewCatalogStore()
	persister := &fakePersister{}
	svc := NewMarketService(catalog, source, overview, persister, testLogger())
	return svc, catalog, persister
}

func TestMarketService_AddInstrumentWithPrice(t *testing.T) {
	svc, catalog, persister := newMarketService(&fixedSource{price: 1}, nil)

	price := 150.0
	res, err := svc.AddInstrument(context.Background(), "aapl", &price)
	if err != nil {
		t.Fatalf("AddInstrument failed: %v", err)
	}
	if res.Instrument.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL (normalized)", res.Instrument.Symbol)
	}
	if res.Instrument.PriceCents != 15000 {
		t.Errorf("price = %d, want 15000", res.Instrument.PriceCents)
	}
	if res.Fetched {
		t.Error("Fetched = true for an explicit price")
	}
	if !catalog.Exists("AAPL") {
		t.Error("symbol not in catalog")
	}
	if persister.saveCount() != 1 {
		t.Errorf("saves = %d, want 1", persister.saveCount())
	}
}

func TestMarketService_AddInstrumentFetchesWhenNoPrice(t *testing.T) {
	source := &fixedSource{price: 42000}
	svc, _, _ := newMarketService(source, nil)

	res, err := svc.AddInstrument(context.Background(), "MSFT", nil)
	if err != nil {
		t.Fatalf("AddInstrument failed: %v", err)
	}
	if !res.Fetched {
		t.Error("Fetched = false for a fetched price")
	}
	if res.Instrument.PriceCents != 42000 {
		t.Errorf("price = %d, want 42000", res.Instrument.PriceCents)
	}
	if source.calls != 1 {
		t.Errorf("source calls = %d, want 1", source.calls)
	}
}

func TestMarketService_AddInstrumentSourceUnavailable(t *testing.T) {
	svc, _, _ := newMarketService(&fixedSource{err: quote.ErrUnavailable}, nil)

	_, err := svc.AddInstrument(context.Background(), "MSFT", nil)
	if !errors.Is(err, quote.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestMarketService_AddInstrumentValidation(t *testing.T) {
	svc, _, _ := newMarketService(&fixedSource{price: 1}, nil)

	negative := -1.0
	threeDecimals := 1.001
	tests := []struct {
		name   string
		symbol string
		price  *float64
	}{
		{"empty symbol", "", nil},
		{"symbol too long", "ABCDEFGHIJK", nil},
		{"bad characters", "AA PL", nil},
		{"negative price", "AAPL", &negative},
		{"too much precision", "AAPL", &threeDecimals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddInstrument(context.Background(), tt.symbol, tt.price)
			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestMarketService_AddInstrumentRebaselines(t *testing.T) {
	svc, catalog, _ := newMarketService(&fixedSource{price: 1}, nil)
	catalog.Upsert("AAPL", 15000, time.Now())
	catalog.ApplyRefresh("AAPL", 16500, time.Now())

	price := 200.0
	res, err := svc.AddInstrument(context.Background(), "AAPL", &price)
	if err != nil {
		t.Fatalf("AddInstrument failed: %v", err)
	}
	if res.Instrument.PercentChange != 0 {
		t.Errorf("percent change = %v, want 0 after re-add", res.Instrument.PercentChange)
	}
	if len(res.Instrument.History) != 1 {
		t.Errorf("history length = %d, want 1 after re-add", len(res.Instrument.History))
	}
}

func TestMarketService_Market(t *testing.T) {
	svc, catalog, _ := newMarketService(&fixedSource{price: 1}, nil)
	now := time.Now()
	catalog.Upsert("MSFT", 30000, now)
	catalog.Upsert("AAPL", 15000, now)

	list := svc.Market()
	if len(list) != 2 {
		t.Fatalf("market length = %d, want 2", len(list))
	}
	if list[0].Symbol != "AAPL" || list[1].Symbol != "MSFT" {
		t.Errorf("market order = [%s %s], want sorted [AAPL MSFT]", list[0].Symbol, list[1].Symbol)
	}
}

func TestMarketService_Info(t *testing.T) {
	overview := &fixedOverview{fields: map[string]string{"Symbol": "AAPL", "Name": "Apple Inc"}}
	svc, _, _ := newMarketService(&fixedSource{price: 1}, overview)

	fields, err := svc.Info(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if fields["Name"] != "Apple Inc" {
		t.Errorf("Name = %q", fields["Name"])
	}
}

func TestMarketService_InfoWithoutProvider(t *testing.T) {
	svc, _, _ := newMarketService(&fixedSource{price: 1}, nil)

	if _, err := svc.Info(context.Background(), "AAPL"); !errors.Is(err, quote.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable with no provider, got %v", err)
	}
}
