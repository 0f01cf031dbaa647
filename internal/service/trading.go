package service

import (
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/store"
)

// OrderSide distinguishes buys from sells in a trade request.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// TradeRequest represents a buy or sell order.
type TradeRequest struct {
	AccountID string
	Symbol    string
	Side      OrderSide
	Shares    int64
}

// TradeResult is the outcome of an executed trade. PersistErr is set when
// the post-trade save failed; the trade itself still stands.
type TradeResult struct {
	Transaction     domain.Transaction
	NewBalanceCents int64
	PersistErr      error
}

// TradingService executes buy and sell orders against the ledger at the
// catalog's current prices.
type TradingService struct {
	catalog   *store.CatalogStore
	ledger    *store.LedgerStore
	persister Persister
	logger    *slog.Logger
}

// NewTradingService creates a new TradingService.
func NewTradingService(catalog *store.CatalogStore, ledger *store.LedgerStore, persister Persister, logger *slog.Logger) *TradingService {
	return &TradingService{
		catalog:   catalog,
		ledger:    ledger,
		persister: persister,
		logger:    logger,
	}
}

// Execute validates and runs a trade. The price read, the balance or
// holdings check, and the mutation happen as one critical section under
// the account's lock, so concurrent orders against the same account can
// never both spend the same balance. Failed validation leaves the account
// untouched.
func (s *TradingService) Execute(req TradeRequest) (*TradeResult, error) {
	if req.Side != SideBuy && req.Side != SideSell {
		return nil, &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}
	if req.Shares < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	symbol, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}

	account, err := s.ledger.Get(req.AccountID)
	if err != nil {
		return nil, err
	}

	account.Mu.Lock()
	tx, err := s.execute(account, symbol, req.Side, req.Shares)
	if err != nil {
		account.Mu.Unlock()
		return nil, err
	}
	newBalance := account.BalanceCents
	account.Mu.Unlock()

	s.logger.Info("trade executed",
		slog.String("account_id", account.AccountID),
		slog.String("side", string(req.Side)),
		slog.String("symbol", symbol),
		slog.Int64("shares", req.Shares),
		slog.Int64("total_cents", tx.TotalCents),
	)

	res := &TradeResult{Transaction: tx, NewBalanceCents: newBalance}
	if err := s.persister.Save(); err != nil {
		s.logger.Error("persist after trade failed",
			slog.String("account_id", account.AccountID), slog.String("error", err.Error()))
		res.PersistErr = err
	}
	return res, nil
}

// execute performs the check-and-mutate step. Caller holds account.Mu.
func (s *TradingService) execute(account *domain.Account, symbol string, side OrderSide, shares int64) (domain.Transaction, error) {
	// Price is read fresh at execution time, inside the critical section.
	priceCents, err := s.catalog.Price(symbol)
	if err != nil {
		return domain.Transaction{}, err
	}

	// The total must fit in int64 cents. An unchecked multiplication wraps
	// negative, which would pass the balance check below and credit the
	// buyer instead of debiting.
	if priceCents > 0 && shares > math.MaxInt64/priceCents {
		return domain.Transaction{}, &domain.ValidationError{
			Message: "order total exceeds the maximum representable amount",
		}
	}
	totalCents := priceCents * shares

	switch side {
	case SideBuy:
		if account.BalanceCents < totalCents {
			return domain.Transaction{}, domain.ErrInsufficientFunds
		}
		account.BalanceCents -= totalCents
		account.Holdings[symbol] += shares

	case SideSell:
		owned := account.SharesOf(symbol)
		if owned < shares {
			return domain.Transaction{}, &domain.InsufficientSharesError{Symbol: symbol, Owned: owned}
		}
		account.BalanceCents += totalCents
		if owned == shares {
			delete(account.Holdings, symbol)
		} else {
			account.Holdings[symbol] = owned - shares
		}
	}

	tx := domain.Transaction{
		ID:         uuid.NewString(),
		Type:       domain.TransactionType(side),
		Symbol:     symbol,
		Shares:     shares,
		PriceCents: priceCents,
		TotalCents: totalCents,
		ExecutedAt: time.Now(),
	}
	account.Transactions = append(account.Transactions, tx)
	return tx, nil
}
