package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paperstreet/stocksim/internal/service"
)

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware.
func NewRouter(
	accountSvc *service.AccountService,
	marketSvc *service.MarketService,
	tradingSvc *service.TradingService,
	valuationSvc *service.ValuationService,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(accountSvc, valuationSvc)
	stockH := NewStockHandler(marketSvc)
	orderH := NewOrderHandler(tradingSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account routes.
	r.Post("/accounts", accountH.Register)
	r.Get("/accounts/{account_id}/balance", accountH.GetBalance)
	r.Get("/accounts/{account_id}/portfolio", accountH.GetPortfolio)
	r.Get("/accounts/{account_id}/transactions", accountH.ListTransactions)

	// Order routes.
	r.Post("/orders", orderH.SubmitOrder)

	// Stock routes.
	r.Post("/stocks", stockH.AddStock)
	r.Get("/stocks", stockH.ListStocks)
	r.Get("/stocks/{symbol}/price", stockH.GetPrice)
	r.Get("/stocks/{symbol}/info", stockH.GetInfo)

	// Leaderboard.
	r.Get("/leaderboard", accountH.Leaderboard)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests, returning 400 Bad Request before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !isJSONContentType(r) {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
