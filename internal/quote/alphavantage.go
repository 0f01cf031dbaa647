package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paperstreet/stocksim/internal/domain"
)

// AlphaVantage is a client for the Alpha Vantage REST API. Fetch never
// returns anything but a price or ErrUnavailable: the provider's failure
// modes (HTTP errors, rate-limit "Note" responses, missing fields) all
// collapse to ErrUnavailable so callers can fall back.
type AlphaVantage struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAlphaVantage creates a client against the given base URL (e.g.
// "https://www.alphavantage.co"). The timeout bounds every request so an
// unreachable provider cannot stall a refresh cycle.
func NewAlphaVantage(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *AlphaVantage {
	return &AlphaVantage{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// globalQuoteResponse is the GLOBAL_QUOTE response envelope. "Note" is set
// when the provider signals a rate limit instead of a quote.
type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	Note        string            `json:"Note"`
}

// Fetch requests the current quote for a symbol and returns the price in
// cents, or ErrUnavailable.
func (c *AlphaVantage) Fetch(ctx context.Context, symbol string) (int64, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	})
	if err != nil {
		c.logger.Warn("quote fetch failed",
			slog.String("symbol", symbol), slog.String("error", err.Error()))
		return 0, ErrUnavailable
	}

	var resp globalQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Warn("quote response not parseable", slog.String("symbol", symbol))
		return 0, ErrUnavailable
	}
	if resp.Note != "" {
		c.logger.Warn("quote provider rate limit reached", slog.String("symbol", symbol))
		return 0, ErrUnavailable
	}

	raw, ok := resp.GlobalQuote["05. price"]
	if !ok {
		c.logger.Warn("quote response missing price field", slog.String("symbol", symbol))
		return 0, ErrUnavailable
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		c.logger.Warn("quote price not a valid number",
			slog.String("symbol", symbol), slog.String("raw", raw))
		return 0, ErrUnavailable
	}

	return domain.RoundToCents(price), nil
}

// CompanyOverview requests the provider's company overview for a symbol
// and returns its descriptive fields (name, sector, market cap, ...).
// Any response without a "Symbol" field means the provider has nothing
// for this symbol, reported as ErrUnavailable.
func (c *AlphaVantage) CompanyOverview(ctx context.Context, symbol string) (map[string]string, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
		"apikey":   {c.apiKey},
	})
	if err != nil {
		c.logger.Warn("overview fetch failed",
			slog.String("symbol", symbol), slog.String("error", err.Error()))
		return nil, ErrUnavailable
	}

	var fields map[string]string
	if err := json.Unmarshal(body, &fields); err != nil {
		c.logger.Warn("overview response not parseable", slog.String("symbol", symbol))
		return nil, ErrUnavailable
	}
	if fields["Symbol"] == "" {
		return nil, ErrUnavailable
	}
	return fields, nil
}

func (c *AlphaVantage) get(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
