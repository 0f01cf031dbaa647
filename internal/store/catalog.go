package store

import (
	"sort"
	"sync"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
)

// CatalogStore is a thread-safe in-memory store for instruments, keyed by
// symbol. Instruments are never removed; the key set only grows. All reads
// return deep copies so callers never observe a partial update.
type CatalogStore struct {
	mu          sync.RWMutex
	instruments map[string]*domain.Instrument
}

// NewCatalogStore creates an empty CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		instruments: make(map[string]*domain.Instrument),
	}
}

// Upsert sets an instrument to an admin-supplied price. An existing
// instrument is re-baselined (percent change 0, single-entry history);
// a new one is created the same way.
func (s *CatalogStore) Upsert(symbol string, priceCents int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inst, ok := s.instruments[symbol]; ok {
		inst.Rebaseline(priceCents, now)
		return
	}
	s.instruments[symbol] = domain.NewInstrument(symbol, priceCents, now)
}

// ApplyRefresh records a scheduled price update for a tracked symbol.
// It is a no-op for symbols not in the catalog; the refresher only
// iterates symbols that were present when the cycle started.
func (s *CatalogStore) ApplyRefresh(symbol string, priceCents int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instruments[symbol]
	if !ok {
		return
	}
	inst.ApplyRefresh(priceCents, now)
}

// Price returns the current price for a symbol. It returns
// domain.ErrSymbolNotFound if the symbol is not tracked.
func (s *CatalogStore) Price(symbol string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[symbol]
	if !ok {
		return 0, domain.ErrSymbolNotFound
	}
	return inst.PriceCents, nil
}

// Get returns a copy of the instrument for a symbol. It returns
// domain.ErrSymbolNotFound if the symbol is not tracked.
func (s *CatalogStore) Get(symbol string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[symbol]
	if !ok {
		return nil, domain.ErrSymbolNotFound
	}
	return inst.Clone(), nil
}

// Exists returns true if the symbol is tracked.
func (s *CatalogStore) Exists(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.instruments[symbol]
	return ok
}

// Symbols returns all tracked symbols sorted alphabetically.
func (s *CatalogStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.instruments))
	for sym := range s.instruments {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// List returns copies of all instruments sorted by symbol.
func (s *CatalogStore) List() []*domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*domain.Instrument, 0, len(s.instruments))
	for _, inst := range s.instruments {
		list = append(list, inst.Clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Symbol < list[j].Symbol })
	return list
}

// Snapshot returns a deep copy of the whole catalog for persistence.
func (s *CatalogStore) Snapshot() map[string]*domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]*domain.Instrument, len(s.instruments))
	for sym, inst := range s.instruments {
		snap[sym] = inst.Clone()
	}
	return snap
}

// Restore replaces the catalog contents from a loaded snapshot. Called
// once at startup before any other goroutine touches the store.
func (s *CatalogStore) Restore(instruments map[string]*domain.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instruments = make(map[string]*domain.Instrument, len(instruments))
	for sym, inst := range instruments {
		s.instruments[sym] = inst.Clone()
	}
}
