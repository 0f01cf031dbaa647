package service

import (
	"errors"
	"testing"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/store"
	"pgregory.net/rapid"
)

// TestProperty_LedgerInvariants runs random buy/sell sequences against one
// account and verifies the ledger invariants after every operation: the
// balance never goes negative, every holdings entry stays positive, and
// each recorded total is exactly shares × price.
func TestProperty_LedgerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		catalog := store.NewCatalogStore()
		ledger := store.NewLedgerStore()
		persister := &fakePersister{}
		svc := NewTradingService(catalog, ledger, persister, testLogger())

		symbols := []string{"AAPL", "MSFT", "TSLA"}
		for _, sym := range symbols {
			price := rapid.Int64Range(1, 50000).Draw(t, "price-"+sym)
			catalog.Upsert(sym, price, time.Now())
		}

		startingBalance := rapid.Int64Range(0, 2_000_000).Draw(t, "startingBalance")
		if err := ledger.Create(domain.NewAccount("u1", startingBalance, time.Now())); err != nil {
			t.Fatalf("create account: %v", err)
		}

		numOps := rapid.IntRange(1, 60).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			side := rapid.SampledFrom([]OrderSide{SideBuy, SideSell}).Draw(t, "side")
			symbol := rapid.SampledFrom(symbols).Draw(t, "symbol")
			shares := rapid.Int64Range(-2, 20).Draw(t, "shares")

			// Occasionally move the price mid-sequence.
			if rapid.Bool().Draw(t, "refresh") {
				catalog.ApplyRefresh(symbol, rapid.Int64Range(1, 50000).Draw(t, "newPrice"), time.Now())
			}

			_, err := svc.Execute(TradeRequest{AccountID: "u1", Symbol: symbol, Side: side, Shares: shares})
			if err != nil {
				var sharesErr *domain.InsufficientSharesError
				if shares < 1 && !errors.Is(err, domain.ErrInvalidQuantity) {
					t.Fatalf("shares=%d: expected ErrInvalidQuantity, got %v", shares, err)
				}
				if !errors.Is(err, domain.ErrInvalidQuantity) &&
					!errors.Is(err, domain.ErrInsufficientFunds) &&
					!errors.As(err, &sharesErr) {
					t.Fatalf("unexpected error: %v", err)
				}
			}

			account, _ := ledger.Get("u1")
			account.Mu.Lock()
			if account.BalanceCents < 0 {
				account.Mu.Unlock()
				t.Fatalf("balance went negative after op %d: %d", i, account.BalanceCents)
			}
			for sym, held := range account.Holdings {
				if held <= 0 {
					account.Mu.Unlock()
					t.Fatalf("holdings[%s] = %d after op %d, want > 0", sym, held, i)
				}
			}
			for _, tx := range account.Transactions {
				if tx.TotalCents != tx.Shares*tx.PriceCents {
					account.Mu.Unlock()
					t.Fatalf("transaction total %d != %d × %d", tx.TotalCents, tx.Shares, tx.PriceCents)
				}
			}
			account.Mu.Unlock()
		}
	})
}
