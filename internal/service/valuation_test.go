package service

import (
	"errors"
	"testing"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/store"
)

type valuationFixture struct {
	catalog *store.CatalogStore
	ledger  *store.LedgerStore
	svc     *ValuationService
}

func newValuationFixture() *valuationFixture {
	catalog := store.NewCatalogStore()
	ledger := store.NewLedgerStore()
	return &valuationFixture{
		catalog: catalog,
		ledger:  ledger,
		svc:     NewValuationService(catalog, ledger),
	}
}

func (f *valuationFixture) addAccount(id string, balanceCents int64, holdings map[string]int64) {
	a := domain.NewAccount(id, balanceCents, time.Now())
	for sym, shares := range holdings {
		a.Holdings[sym] = shares
	}
	_ = f.ledger.Create(a)
}

func TestValuation_NetWorth(t *testing.T) {
	f := newValuationFixture()
	f.catalog.Upsert("AAPL", 15000, time.Now())
	f.catalog.Upsert("MSFT", 30000, time.Now())
	f.addAccount("u1", 100_000, map[string]int64{"AAPL": 10, "MSFT": 2})

	nw, err := f.svc.NetWorth("u1")
	if err != nil {
		t.Fatalf("NetWorth failed: %v", err)
	}
	if nw.BalanceCents != 100_000 {
		t.Errorf("balance = %d, want 100000", nw.BalanceCents)
	}
	if nw.PortfolioCents != 210_000 {
		t.Errorf("portfolio = %d, want 210000", nw.PortfolioCents)
	}
	if nw.NetWorthCents != 310_000 {
		t.Errorf("net worth = %d, want 310000", nw.NetWorthCents)
	}
}

func TestValuation_NetWorthIgnoresUntrackedSymbols(t *testing.T) {
	f := newValuationFixture()
	f.catalog.Upsert("AAPL", 15000, time.Now())
	// DELISTED is held but no longer in the catalog: contributes zero.
	f.addAccount("u1", 100_000, map[string]int64{"AAPL": 1, "DELISTED": 50})

	nw, err := f.svc.NetWorth("u1")
	if err != nil {
		t.Fatalf("NetWorth failed: %v", err)
	}
	if nw.NetWorthCents != 115_000 {
		t.Errorf("net worth = %d, want 115000", nw.NetWorthCents)
	}
}

func TestValuation_NetWorthUnknownAccount(t *testing.T) {
	f := newValuationFixture()
	if _, err := f.svc.NetWorth("ghost"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestValuation_LeaderboardOrdering(t *testing.T) {
	f := newValuationFixture()
	f.catalog.Upsert("AAPL", 15000, time.Now())

	f.addAccount("poor", 50_000, nil)
	f.addAccount("rich", 100_000, map[string]int64{"AAPL": 100}) // 1,600,000
	f.addAccount("middle", 500_000, nil)

	entries := f.svc.Leaderboard()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	wantOrder := []string{"rich", "middle", "poor"}
	for i, want := range wantOrder {
		if entries[i].AccountID != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].AccountID, want)
		}
		if entries[i].Rank != i+1 {
			t.Errorf("entries[%d].Rank = %d, want %d", i, entries[i].Rank, i+1)
		}
	}
}

func TestValuation_LeaderboardTiesKeepRegistrationOrder(t *testing.T) {
	f := newValuationFixture()

	// Same net worth; registration order decides.
	f.addAccount("second", 100_000, nil)
	f.addAccount("first", 100_000, nil)
	f.addAccount("third", 100_000, nil)

	entries := f.svc.Leaderboard()
	wantOrder := []string{"second", "first", "third"}
	for i, want := range wantOrder {
		if entries[i].AccountID != want {
			t.Errorf("entries[%d] = %q, want %q (stable tie-break)", i, entries[i].AccountID, want)
		}
	}
}

func TestValuation_PortfolioPositions(t *testing.T) {
	f := newValuationFixture()
	f.catalog.Upsert("AAPL", 16500, time.Now())
	f.addAccount("u1", 850_000, map[string]int64{"AAPL": 10})

	// Bought at 150.00/share.
	a, _ := f.ledger.Get("u1")
	a.Transactions = append(a.Transactions, domain.Transaction{
		ID: "t1", Type: domain.TransactionBuy, Symbol: "AAPL",
		Shares: 10, PriceCents: 15000, TotalCents: 150_000, ExecutedAt: time.Now(),
	})

	p, err := f.svc.Portfolio("u1")
	if err != nil {
		t.Fatalf("Portfolio failed: %v", err)
	}
	if len(p.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(p.Positions))
	}
	pos := p.Positions[0]
	if pos.ValueCents != 165_000 {
		t.Errorf("value = %d, want 165000", pos.ValueCents)
	}
	if pos.CostBasisCents != 150_000 {
		t.Errorf("cost basis = %d, want 150000", pos.CostBasisCents)
	}
	if pos.ProfitCents != 15_000 {
		t.Errorf("profit = %d, want 15000", pos.ProfitCents)
	}
	if pos.ProfitPct != 10.0 {
		t.Errorf("profit pct = %v, want 10.0", pos.ProfitPct)
	}
	if p.PortfolioCents != 165_000 {
		t.Errorf("portfolio total = %d, want 165000", p.PortfolioCents)
	}
}

func TestValuation_ProfitLossZeroPctWhenBasisNotPositive(t *testing.T) {
	f := newValuationFixture()
	f.catalog.Upsert("AAPL", 16500, time.Now())
	f.addAccount("u1", 1_000_000, nil)

	// Closed position with a realized gain: basis is negative, so the
	// percent form reports 0.
	a, _ := f.ledger.Get("u1")
	a.Transactions = append(a.Transactions,
		domain.Transaction{Type: domain.TransactionBuy, Symbol: "AAPL", Shares: 10, PriceCents: 15000, TotalCents: 150_000},
		domain.Transaction{Type: domain.TransactionSell, Symbol: "AAPL", Shares: 10, PriceCents: 16500, TotalCents: 165_000},
	)

	profit, pct, err := f.svc.ProfitLoss("u1", "AAPL")
	if err != nil {
		t.Fatalf("ProfitLoss failed: %v", err)
	}
	if profit != 15_000 {
		t.Errorf("profit = %d, want 15000", profit)
	}
	if pct != 0 {
		t.Errorf("pct = %v, want 0 for non-positive basis", pct)
	}
}
