package persist

import (
	"fmt"
	"sync"
	"time"

	"github.com/paperstreet/stocksim/internal/store"
)

// Saver captures the current catalog and ledger state and writes it
// through a FileStore. Services and the refresher call Save after every
// mutation; failures are non-fatal warnings to them.
//
// Snapshot capture and the file write happen under one lock, so concurrent
// saves cannot interleave into a stale snapshot overwriting a newer one:
// whichever save runs last wrote the most recent state.
type Saver struct {
	mu      sync.Mutex
	catalog *store.CatalogStore
	ledger  *store.LedgerStore
	file    *FileStore
}

// NewSaver creates a Saver over the given stores and file store.
func NewSaver(catalog *store.CatalogStore, ledger *store.LedgerStore, file *FileStore) *Saver {
	return &Saver{catalog: catalog, ledger: ledger, file: file}
}

// Save snapshots both stores and writes them as one durable unit.
func (s *Saver) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		SavedAt:  time.Now().UTC(),
		Catalog:  s.catalog.Snapshot(),
		Accounts: s.ledger.Snapshot(),
	}
	if err := s.file.Save(snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
