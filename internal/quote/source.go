// Package quote provides price sources for tracked symbols: a live client
// for an Alpha-Vantage-style quote provider, a deterministic simulated
// generator, and a fallback chain combining them.
package quote

import (
	"context"
	"errors"
)

// ErrUnavailable means a source could not produce a price. The live client
// collapses every failure mode into it (transport error, non-2xx status,
// missing fields, provider rate-limit signal); callers fall back rather
// than propagate it.
var ErrUnavailable = errors.New("quote_unavailable")

// Source fetches the current price of a symbol in cents.
type Source interface {
	Fetch(ctx context.Context, symbol string) (int64, error)
}
