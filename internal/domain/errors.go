package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrAccountAlreadyExists = errors.New("account_already_exists")
	ErrAccountNotFound      = errors.New("account_not_found")
	ErrSymbolNotFound       = errors.New("symbol_not_found")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInsufficientFunds    = errors.New("insufficient_funds")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InsufficientSharesError is returned when a sell requests more shares than
// the account owns. It carries the owned count so callers can report it.
type InsufficientSharesError struct {
	Symbol string
	Owned  int64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient_shares: own %d of %s", e.Owned, e.Symbol)
}
