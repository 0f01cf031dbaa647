package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paperstreet/stocksim/internal/domain"
	"github.com/paperstreet/stocksim/internal/quote"
	"github.com/paperstreet/stocksim/internal/service"
)

// StockHandler handles HTTP requests for catalog endpoints.
type StockHandler struct {
	marketSvc *service.MarketService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(marketSvc *service.MarketService) *StockHandler {
	return &StockHandler{marketSvc: marketSvc}
}

// addStockRequest is the JSON request body for POST /stocks. A nil price
// means the price is fetched from the quote chain.
type addStockRequest struct {
	Symbol string   `json:"symbol"`
	Price  *float64 `json:"price"`
}

// stockResponse is a single instrument in stock responses.
type stockResponse struct {
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	PercentChange  float64 `json:"percent_change"`
	PersistWarning string  `json:"persist_warning,omitempty"`
}

// historyPointResponse is one entry in the price history.
type historyPointResponse struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// priceResponse is the JSON response for GET /stocks/{symbol}/price.
type priceResponse struct {
	Symbol        string                 `json:"symbol"`
	Price         float64                `json:"price"`
	PercentChange float64                `json:"percent_change"`
	History       []historyPointResponse `json:"history"`
}

// marketResponse is the JSON response for GET /stocks.
type marketResponse struct {
	Stocks []stockResponse `json:"stocks"`
}

// AddStock handles POST /stocks. Admin gating is the deployment's concern
// (the route is expected to sit behind an authenticating front end).
func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.marketSvc.AddInstrument(r.Context(), req.Symbol, req.Price)
	if err != nil {
		mapStockError(w, err)
		return
	}

	resp := stockResponse{
		Symbol:        res.Instrument.Symbol,
		Price:         domain.CentsToDollars(res.Instrument.PriceCents),
		PercentChange: res.Instrument.PercentChange,
	}
	if res.PersistErr != nil {
		resp.PersistWarning = "state could not be persisted; it will be retried on the next change"
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// ListStocks handles GET /stocks.
func (h *StockHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	instruments := h.marketSvc.Market()

	stocks := make([]stockResponse, len(instruments))
	for i, inst := range instruments {
		stocks[i] = stockResponse{
			Symbol:        inst.Symbol,
			Price:         domain.CentsToDollars(inst.PriceCents),
			PercentChange: inst.PercentChange,
		}
	}

	WriteJSON(w, http.StatusOK, marketResponse{Stocks: stocks})
}

// GetPrice handles GET /stocks/{symbol}/price.
func (h *StockHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	inst, err := h.marketSvc.Instrument(symbol)
	if err != nil {
		mapStockError(w, err)
		return
	}

	history := make([]historyPointResponse, len(inst.History))
	for i, p := range inst.History {
		history[i] = historyPointResponse{
			Time:  p.Time.UTC().Format("2006-01-02T15:04:05Z"),
			Price: domain.CentsToDollars(p.PriceCents),
		}
	}

	WriteJSON(w, http.StatusOK, priceResponse{
		Symbol:        inst.Symbol,
		Price:         domain.CentsToDollars(inst.PriceCents),
		PercentChange: inst.PercentChange,
		History:       history,
	})
}

// GetInfo handles GET /stocks/{symbol}/info: a passthrough of the quote
// provider's company overview fields.
func (h *StockHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	fields, err := h.marketSvc.Info(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, quote.ErrUnavailable) {
			WriteError(w, http.StatusBadGateway, "info_unavailable",
				"No company information available for this symbol")
			return
		}
		mapStockError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, fields)
}

// mapStockError maps domain errors to HTTP responses for stock endpoints.
func mapStockError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrSymbolNotFound):
		WriteError(w, http.StatusNotFound, "symbol_not_found", err.Error())
	case errors.Is(err, quote.ErrUnavailable):
		WriteError(w, http.StatusBadGateway, "quote_unavailable",
			"No price source could produce a quote")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
