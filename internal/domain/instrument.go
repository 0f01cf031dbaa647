package domain

import "time"

// HistoryLimit is the maximum number of price points retained per
// instrument. Older entries are evicted FIFO.
const HistoryLimit = 24

// PricePoint is a single entry in an instrument's price history.
type PricePoint struct {
	Time       time.Time `json:"time"`
	PriceCents int64     `json:"price_cents"`
}

// Instrument represents a tracked tradable symbol: its current price, the
// percent change of the latest refresh relative to the prior price, and a
// bounded price history.
type Instrument struct {
	Symbol        string       `json:"symbol"`
	PriceCents    int64        `json:"price_cents"`
	PercentChange float64      `json:"percent_change"`
	History       []PricePoint `json:"history"`
}

// NewInstrument creates an instrument at an initial price with a
// single-entry history and a percent change of zero.
func NewInstrument(symbol string, priceCents int64, now time.Time) *Instrument {
	return &Instrument{
		Symbol:        symbol,
		PriceCents:    priceCents,
		PercentChange: 0,
		History:       []PricePoint{{Time: now, PriceCents: priceCents}},
	}
}

// ApplyRefresh records a scheduled price update: the percent change is
// computed against the prior price (zero when the prior price was zero),
// the new point is appended to the history, and the history is truncated
// to the most recent HistoryLimit entries.
func (i *Instrument) ApplyRefresh(priceCents int64, now time.Time) {
	old := i.PriceCents
	if old > 0 {
		i.PercentChange = float64(priceCents-old) / float64(old) * 100
	} else {
		i.PercentChange = 0
	}

	i.History = append(i.History, PricePoint{Time: now, PriceCents: priceCents})
	if len(i.History) > HistoryLimit {
		i.History = i.History[len(i.History)-HistoryLimit:]
	}

	i.PriceCents = priceCents
}

// Rebaseline resets the instrument to an admin-set price: percent change
// goes back to zero and the history restarts with a single entry. An admin
// price-set deliberately re-baselines rather than computing a change
// against the prior price.
func (i *Instrument) Rebaseline(priceCents int64, now time.Time) {
	i.PriceCents = priceCents
	i.PercentChange = 0
	i.History = []PricePoint{{Time: now, PriceCents: priceCents}}
}

// Clone returns a deep copy of the instrument.
func (i *Instrument) Clone() *Instrument {
	history := make([]PricePoint, len(i.History))
	copy(history, i.History)
	return &Instrument{
		Symbol:        i.Symbol,
		PriceCents:    i.PriceCents,
		PercentChange: i.PercentChange,
		History:       history,
	}
}
