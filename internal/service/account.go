package service

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/store"
)

var (
	accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	symbolRegex    = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)
)

// Persister writes the current in-memory state durably. Save failures are
// non-fatal to callers: the in-memory mutation stands and the failure is
// surfaced as a warning.
type Persister interface {
	Save() error
}

// RegisterResult is the outcome of a successful registration. Account is a
// copy of the registered account, safe to read without holding its lock.
// PersistErr is set when the post-mutation save failed.
type RegisterResult struct {
	Account    *domain.Account
	PersistErr error
}

// AccountService handles account registration and reads of account state.
type AccountService struct {
	ledger          *store.LedgerStore
	persister       Persister
	startingBalance int64
	logger          *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(ledger *store.LedgerStore, persister Persister, startingBalanceCents int64, logger *slog.Logger) *AccountService {
	return &AccountService{
		ledger:          ledger,
		persister:       persister,
		startingBalance: startingBalanceCents,
		logger:          logger,
	}
}

// Register creates an account with the default starting balance. It
// returns domain.ErrAccountAlreadyExists for a duplicate ID; an existing
// account is never reset.
func (s *AccountService) Register(accountID string) (*RegisterResult, error) {
	if !accountIDRegex.MatchString(accountID) {
		return nil, &domain.ValidationError{
			Message: "account_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	account := domain.NewAccount(accountID, s.startingBalance, time.Now())
	// Clone before Create publishes the account: once it is in the ledger,
	// concurrent trades may mutate it under its own lock.
	snapshot := account.Clone()
	if err := s.ledger.Create(account); err != nil {
		return nil, err
	}

	res := &RegisterResult{Account: snapshot}
	if err := s.persister.Save(); err != nil {
		s.logger.Error("persist after register failed",
			slog.String("account_id", accountID), slog.String("error", err.Error()))
		res.PersistErr = err
	}
	return res, nil
}

// Transactions returns a copy of the account's transaction log.
func (s *AccountService) Transactions(accountID string) ([]domain.Transaction, error) {
	account, err := s.ledger.Get(accountID)
	if err != nil {
		return nil, err
	}

	account.Mu.Lock()
	defer account.Mu.Unlock()

	txs := make([]domain.Transaction, len(account.Transactions))
	copy(txs, account.Transactions)
	return txs, nil
}
