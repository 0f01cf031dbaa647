package store

import (
	"sync"

	"github.com/paperstreet/stocksim/internal/domain"
)

// LedgerStore is a thread-safe in-memory store for accounts, keyed by
// account_id. Registration order is retained so leaderboard ties can be
// broken deterministically.
type LedgerStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	order    []string // account IDs in registration order
}

// NewLedgerStore creates an empty LedgerStore.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[string]*domain.Account),
	}
}

// Create adds an account to the store. It returns
// domain.ErrAccountAlreadyExists if an account with the same ID
// already exists; re-registration never resets an account.
func (s *LedgerStore) Create(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.AccountID]; exists {
		return domain.ErrAccountAlreadyExists
	}
	s.accounts[a.AccountID] = a
	s.order = append(s.order, a.AccountID)
	return nil
}

// Get retrieves an account by ID. The returned pointer is shared; callers
// must hold the account's Mu for any read or mutation of its fields. It
// returns domain.ErrAccountNotFound if the account does not exist.
func (s *LedgerStore) Get(id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// Exists returns true if an account with the given ID exists.
func (s *LedgerStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// List returns all accounts in registration order. The returned pointers
// are shared; callers must hold each account's Mu to read its fields.
func (s *LedgerStore) List() []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*domain.Account, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.accounts[id])
	}
	return list
}

// Snapshot returns deep copies of all accounts in registration order,
// taking each account's lock so no copy captures a half-applied trade.
func (s *LedgerStore) Snapshot() []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make([]*domain.Account, 0, len(s.order))
	for _, id := range s.order {
		a := s.accounts[id]
		a.Mu.Lock()
		snap = append(snap, a.Clone())
		a.Mu.Unlock()
	}
	return snap
}

// Restore replaces the ledger contents from a loaded snapshot; the slice
// order becomes the registration order. Called once at startup before any
// other goroutine touches the store.
func (s *LedgerStore) Restore(accounts []*domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = make(map[string]*domain.Account, len(accounts))
	s.order = make([]string, 0, len(accounts))
	for _, a := range accounts {
		clone := a.Clone()
		if clone.Holdings == nil {
			clone.Holdings = make(map[string]int64)
		}
		s.accounts[clone.AccountID] = clone
		s.order = append(s.order, clone.AccountID)
	}
}
