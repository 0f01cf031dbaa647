package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/service"
)

// AccountHandler handles HTTP requests for account and leaderboard endpoints.
type AccountHandler struct {
	accountSvc   *service.AccountService
	valuationSvc *service.ValuationService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService, valuationSvc *service.ValuationService) *AccountHandler {
	return &AccountHandler{
		accountSvc:   accountSvc,
		valuationSvc: valuationSvc,
	}
}

// registerRequest is the JSON request body for POST /accounts.
type registerRequest struct {
	AccountID string `json:"account_id"`
}

// registerResponse is the JSON response for POST /accounts (201 Created).
type registerResponse struct {
	AccountID      string  `json:"account_id"`
	Balance        float64 `json:"balance"`
	CreatedAt      string  `json:"created_at"`
	PersistWarning string  `json:"persist_warning,omitempty"`
}

// balanceResponse is the JSON response for GET /accounts/{account_id}/balance.
type balanceResponse struct {
	AccountID      string  `json:"account_id"`
	CashBalance    float64 `json:"cash_balance"`
	PortfolioValue float64 `json:"portfolio_value"`
	NetWorth       float64 `json:"net_worth"`
}

// positionResponse is a single position in the portfolio response.
type positionResponse struct {
	Symbol     string  `json:"symbol"`
	Shares     int64   `json:"shares"`
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
	CostBasis  float64 `json:"cost_basis"`
	ProfitLoss float64 `json:"profit_loss"`
	ProfitPct  float64 `json:"profit_loss_pct"`
}

// portfolioResponse is the JSON response for GET /accounts/{account_id}/portfolio.
type portfolioResponse struct {
	AccountID      string             `json:"account_id"`
	CashBalance    float64            `json:"cash_balance"`
	Positions      []positionResponse `json:"positions"`
	PortfolioValue float64            `json:"portfolio_value"`
}

// transactionResponse is one entry in the transaction log response.
type transactionResponse struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Symbol        string  `json:"symbol"`
	Shares        int64   `json:"shares"`
	PricePerShare float64 `json:"price_per_share"`
	Total         float64 `json:"total"`
	ExecutedAt    string  `json:"executed_at"`
}

// transactionListResponse is the JSON response for
// GET /accounts/{account_id}/transactions.
type transactionListResponse struct {
	AccountID    string                `json:"account_id"`
	Transactions []transactionResponse `json:"transactions"`
}

// leaderboardEntryResponse is one ranked account in the leaderboard.
type leaderboardEntryResponse struct {
	Rank      int     `json:"rank"`
	AccountID string  `json:"account_id"`
	NetWorth  float64 `json:"net_worth"`
}

// leaderboardResponse is the JSON response for GET /leaderboard.
type leaderboardResponse struct {
	Entries []leaderboardEntryResponse `json:"entries"`
}

// Register handles POST /accounts.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.accountSvc.Register(req.AccountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	resp := registerResponse{
		AccountID: res.Account.AccountID,
		Balance:   domain.CentsToDollars(res.Account.BalanceCents),
		CreatedAt: res.Account.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if res.PersistErr != nil {
		resp.PersistWarning = "state could not be persisted; it will be retried on the next change"
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// GetBalance handles GET /accounts/{account_id}/balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	nw, err := h.valuationSvc.NetWorth(accountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, balanceResponse{
		AccountID:      nw.AccountID,
		CashBalance:    domain.CentsToDollars(nw.BalanceCents),
		PortfolioValue: domain.CentsToDollars(nw.PortfolioCents),
		NetWorth:       domain.CentsToDollars(nw.NetWorthCents),
	})
}

// GetPortfolio handles GET /accounts/{account_id}/portfolio.
func (h *AccountHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	portfolio, err := h.valuationSvc.Portfolio(accountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	positions := make([]positionResponse, len(portfolio.Positions))
	for i, p := range portfolio.Positions {
		positions[i] = positionResponse{
			Symbol:     p.Symbol,
			Shares:     p.Shares,
			Price:      domain.CentsToDollars(p.PriceCents),
			Value:      domain.CentsToDollars(p.ValueCents),
			CostBasis:  domain.CentsToDollars(p.CostBasisCents),
			ProfitLoss: domain.CentsToDollars(p.ProfitCents),
			ProfitPct:  p.ProfitPct,
		}
	}

	WriteJSON(w, http.StatusOK, portfolioResponse{
		AccountID:      portfolio.AccountID,
		CashBalance:    domain.CentsToDollars(portfolio.BalanceCents),
		Positions:      positions,
		PortfolioValue: domain.CentsToDollars(portfolio.PortfolioCents),
	})
}

// ListTransactions handles GET /accounts/{account_id}/transactions.
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")

	txs, err := h.accountSvc.Transactions(accountID)
	if err != nil {
		mapAccountError(w, err)
		return
	}

	list := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		list[i] = transactionResponse{
			ID:            tx.ID,
			Type:          string(tx.Type),
			Symbol:        tx.Symbol,
			Shares:        tx.Shares,
			PricePerShare: domain.CentsToDollars(tx.PriceCents),
			Total:         domain.CentsToDollars(tx.TotalCents),
			ExecutedAt:    tx.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	WriteJSON(w, http.StatusOK, transactionListResponse{
		AccountID:    accountID,
		Transactions: list,
	})
}

// Leaderboard handles GET /leaderboard.
func (h *AccountHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries := h.valuationSvc.Leaderboard()

	list := make([]leaderboardEntryResponse, len(entries))
	for i, e := range entries {
		list[i] = leaderboardEntryResponse{
			Rank:      e.Rank,
			AccountID: e.AccountID,
			NetWorth:  domain.CentsToDollars(e.NetWorthCents),
		}
	}

	WriteJSON(w, http.StatusOK, leaderboardResponse{Entries: list})
}

// mapAccountError maps domain errors to HTTP responses for account endpoints.
func mapAccountError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		WriteError(w, http.StatusConflict, "account_already_exists", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
