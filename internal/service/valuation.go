package service

import (
	"sort"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/store"
)

// NetWorthBreakdown splits an account's net worth into cash and the market
// value of its holdings.
type NetWorthBreakdown struct {
	AccountID      string
	BalanceCents   int64
	PortfolioCents int64
	NetWorthCents  int64
}

// Position is one holding valued at the current price, with profit/loss
// derived from the transaction log.
type Position struct {
	Symbol         string
	Shares         int64
	PriceCents     int64
	ValueCents     int64
	CostBasisCents int64
	ProfitCents    int64
	ProfitPct      float64
}

// Portfolio is an account's positions plus totals.
type Portfolio struct {
	AccountID      string
	BalanceCents   int64
	Positions      []Position
	PortfolioCents int64
}

// LeaderboardEntry is one ranked account.
type LeaderboardEntry struct {
	Rank          int
	AccountID     string
	NetWorthCents int64
}

// ValuationService derives net worth, portfolios, and the leaderboard from
// the ledger and catalog. It never mutates either.
type ValuationService struct {
	catalog *store.CatalogStore
	ledger  *store.LedgerStore
}

// NewValuationService creates a new ValuationService.
func NewValuationService(catalog *store.CatalogStore, ledger *store.LedgerStore) *ValuationService {
	return &ValuationService{catalog: catalog, ledger: ledger}
}

// NetWorth returns the account's cash balance plus the market value of its
// holdings. A held symbol missing from the catalog contributes zero.
func (s *ValuationService) NetWorth(accountID string) (*NetWorthBreakdown, error) {
	account, err := s.ledger.Get(accountID)
	if err != nil {
		return nil, err
	}

	account.Mu.Lock()
	defer account.Mu.Unlock()
	return s.netWorthLocked(account), nil
}

// netWorthLocked computes the breakdown. Caller holds account.Mu.
func (s *ValuationService) netWorthLocked(account *domain.Account) *NetWorthBreakdown {
	var portfolio int64
	for symbol, shares := range account.Holdings {
		price, err := s.catalog.Price(symbol)
		if err != nil {
			continue
		}
		portfolio += price * shares
	}
	return &NetWorthBreakdown{
		AccountID:      account.AccountID,
		BalanceCents:   account.BalanceCents,
		PortfolioCents: portfolio,
		NetWorthCents:  account.BalanceCents + portfolio,
	}
}

// Portfolio returns the account's positions valued at current prices,
// sorted by symbol. Positions in symbols no longer tracked by the catalog
// are valued at zero.
func (s *ValuationService) Portfolio(accountID string) (*Portfolio, error) {
	account, err := s.ledger.Get(accountID)
	if err != nil {
		return nil, err
	}

	account.Mu.Lock()
	defer account.Mu.Unlock()

	positions := make([]Position, 0, len(account.Holdings))
	var total int64
	for symbol, shares := range account.Holdings {
		price, err := s.catalog.Price(symbol)
		if err != nil {
			price = 0
		}
		value := price * shares
		basis := account.CostBasisCents(symbol)
		profit := value - basis

		var profitPct float64
		if basis > 0 {
			profitPct = float64(profit) / float64(basis) * 100
		}

		positions = append(positions, Position{
			Symbol:         symbol,
			Shares:         shares,
			PriceCents:     price,
			ValueCents:     value,
			CostBasisCents: basis,
			ProfitCents:    profit,
			ProfitPct:      profitPct,
		})
		total += value
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })

	return &Portfolio{
		AccountID:      account.AccountID,
		BalanceCents:   account.BalanceCents,
		Positions:      positions,
		PortfolioCents: total,
	}, nil
}

// ProfitLoss returns an account's profit on a symbol: current market value
// of the held shares minus the net cash spent per the transaction log. For
// a closed position the value term is zero and the result is the realized
// gain. The percent form divides by the cost basis when it is positive.
func (s *ValuationService) ProfitLoss(accountID, symbol string) (profitCents int64, profitPct float64, err error) {
	account, err := s.ledger.Get(accountID)
	if err != nil {
		return 0, 0, err
	}

	account.Mu.Lock()
	defer account.Mu.Unlock()

	price, priceErr := s.catalog.Price(symbol)
	if priceErr != nil {
		price = 0
	}
	value := price * account.SharesOf(symbol)
	basis := account.CostBasisCents(symbol)
	profit := value - basis

	var pct float64
	if basis > 0 {
		pct = float64(profit) / float64(basis) * 100
	}
	return profit, pct, nil
}

// Leaderboard ranks all accounts by net worth descending. The sort is
// stable over registration order, so equal net worths keep the order the
// accounts registered in.
func (s *ValuationService) Leaderboard() []LeaderboardEntry {
	accounts := s.ledger.List()

	entries := make([]LeaderboardEntry, 0, len(accounts))
	for _, account := range accounts {
		account.Mu.Lock()
		nw := s.netWorthLocked(account)
		account.Mu.Unlock()
		entries = append(entries, LeaderboardEntry{
			AccountID:     nw.AccountID,
			NetWorthCents: nw.NetWorthCents,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NetWorthCents > entries[j].NetWorthCents
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
