package domain

import (
	"sync"
	"time"
)

// TransactionType distinguishes buys from sells in the transaction log.
type TransactionType string

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

// Transaction is one executed order in an account's append-only log.
// TotalCents is always exactly Shares × PriceCents as executed.
type Transaction struct {
	ID         string          `json:"id"`
	Type       TransactionType `json:"type"`
	Symbol     string          `json:"symbol"`
	Shares     int64           `json:"shares"`
	PriceCents int64           `json:"price_cents"`
	TotalCents int64           `json:"total_cents"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// Account represents a registered participant: cash balance, share
// holdings, and the transaction log. Holdings never contain a zero entry;
// a position sold down to nothing is removed from the map.
type Account struct {
	AccountID    string           `json:"account_id"`
	BalanceCents int64            `json:"balance_cents"`
	Holdings     map[string]int64 `json:"holdings"` // symbol → share count, always > 0
	Transactions []Transaction    `json:"transactions"`
	CreatedAt    time.Time        `json:"created_at"`

	// Mu serializes order execution against this account. Buy/sell runs
	// check and mutation as one critical section under this lock.
	Mu sync.Mutex `json:"-"`
}

// NewAccount creates an account with the given starting balance, no
// holdings, and an empty transaction log.
func NewAccount(accountID string, balanceCents int64, now time.Time) *Account {
	return &Account{
		AccountID:    accountID,
		BalanceCents: balanceCents,
		Holdings:     make(map[string]int64),
		Transactions: []Transaction{},
		CreatedAt:    now,
	}
}

// SharesOf returns the number of shares held for a symbol, or 0 if the
// account holds none. Caller must hold Mu.
func (a *Account) SharesOf(symbol string) int64 {
	return a.Holdings[symbol]
}

// CostBasisCents returns the net cash spent on a symbol: the sum of buy
// totals minus the sum of sell totals over the transaction log. Caller
// must hold Mu.
func (a *Account) CostBasisCents(symbol string) int64 {
	var basis int64
	for _, tx := range a.Transactions {
		if tx.Symbol != symbol {
			continue
		}
		switch tx.Type {
		case TransactionBuy:
			basis += tx.TotalCents
		case TransactionSell:
			basis -= tx.TotalCents
		}
	}
	return basis
}

// Clone returns a deep copy of the account's data. Caller must hold Mu.
func (a *Account) Clone() *Account {
	holdings := make(map[string]int64, len(a.Holdings))
	for sym, shares := range a.Holdings {
		holdings[sym] = shares
	}
	transactions := make([]Transaction, len(a.Transactions))
	copy(transactions, a.Transactions)
	return &Account{
		AccountID:    a.AccountID,
		BalanceCents: a.BalanceCents,
		Holdings:     holdings,
		Transactions: transactions,
		CreatedAt:    a.CreatedAt,
	}
}
