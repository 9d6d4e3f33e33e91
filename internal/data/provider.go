package data

import "context"

// Quote is a point-in-time underlying quote. PrevClose may be zero when
// the source could not supply it; percent change degrades to zero then.
type Quote struct {
	Symbol    string
	Last      float64
	PrevClose float64
}

// OptionRow is one raw contract as returned by a provider, before any
// analytics are computed. IV and Delta carry the provider's stored
// greeks when present.
type OptionRow struct {
	Symbol       string
	Type         string // "call" or "put"
	Expiration   string // YYYY-MM-DD
	Strike       float64
	Last         float64
	Bid          float64
	Ask          float64
	PrevClose    float64
	Volume       int64
	OpenInterest int64
	IV           *float64
	Delta        *float64
}

// Provider is the interface that all market data sources implement.
//
// A provider may expose a Secondary provider to fall back to when it
// cannot supply data. This allows chaining: live quotes first, then a
// degraded or synthetic source.
type Provider interface {
	// Name identifies the provider in logs and error details.
	Name() string

	// GetQuote returns the latest quote for the symbol.
	GetQuote(ctx context.Context, symbol string) (Quote, error)

	// GetExpirations lists the available option expiration dates for
	// the symbol, as YYYY-MM-DD strings in ascending order.
	GetExpirations(ctx context.Context, symbol string) ([]string, error)

	// GetChain returns the raw option chain for one expiration date.
	GetChain(ctx context.Context, symbol, expiration string) ([]OptionRow, error)

	// Secondary returns the fallback provider, or nil if this provider
	// is the end of the chain.
	Secondary() Provider
}
