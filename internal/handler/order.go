package handler

import (
	"errors"
	"net/http"

	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/service"
)

// OrderHandler handles HTTP requests for order execution.
type OrderHandler struct {
	tradingSvc *service.TradingService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(tradingSvc *service.TradingService) *OrderHandler {
	return &OrderHandler{tradingSvc: tradingSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	AccountID string `json:"account_id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Shares    int64  `json:"shares"`
}

// orderResponse is the JSON response for POST /orders (201 Created).
type orderResponse struct {
	TransactionID  string  `json:"transaction_id"`
	AccountID      string  `json:"account_id"`
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Shares         int64   `json:"shares"`
	PricePerShare  float64 `json:"price_per_share"`
	Total          float64 `json:"total"`
	NewBalance     float64 `json:"new_balance"`
	ExecutedAt     string  `json:"executed_at"`
	PersistWarning string  `json:"persist_warning,omitempty"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.tradingSvc.Execute(service.TradeRequest{
		AccountID: req.AccountID,
		Symbol:    req.Symbol,
		Side:      service.OrderSide(req.Side),
		Shares:    req.Shares,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	tx := res.Transaction
	resp := orderResponse{
		TransactionID: tx.ID,
		AccountID:     req.AccountID,
		Symbol:        tx.Symbol,
		Side:          string(tx.Type),
		Shares:        tx.Shares,
		PricePerShare: domain.CentsToDollars(tx.PriceCents),
		Total:         domain.CentsToDollars(tx.TotalCents),
		NewBalance:    domain.CentsToDollars(res.NewBalanceCents),
		ExecutedAt:    tx.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if res.PersistErr != nil {
		resp.PersistWarning = "state could not be persisted; it will be retried on the next change"
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// mapOrderError maps domain errors to HTTP responses for order endpoints.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	var sharesErr *domain.InsufficientSharesError
	if errors.As(err, &sharesErr) {
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_shares", sharesErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrSymbolNotFound):
		WriteError(w, http.StatusNotFound, "symbol_not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "invalid_quantity", "shares must be at least 1")
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
