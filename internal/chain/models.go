// Package chain turns raw option rows from a data provider into fully
// computed contracts: implied volatility, delta, moneyness, mid price,
// and percent change.
package chain

// OptionType identifies the side of an option contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// IsCall reports whether the option is a call.
func (t OptionType) IsCall() bool { return t == Call }

// Contract is one processed option contract. Pointer fields are
// omitted from JSON when the underlying value could not be computed,
// except impliedVolatility and delta which clients always expect.
type Contract struct {
	Symbol       string     `json:"contractSymbol,omitempty"`
	Type         OptionType `json:"-"`
	Expiration   string     `json:"-"`
	Strike       float64    `json:"strike"`
	LastPrice    float64    `json:"lastPrice"`
	Bid          *float64   `json:"bid,omitempty"`
	Ask          *float64   `json:"ask,omitempty"`
	MidPrice     *float64   `json:"midPrice,omitempty"`
	Change       *float64   `json:"change,omitempty"`
	PctChange    *float64   `json:"percentChange,omitempty"`
	Volume       *int64     `json:"volume,omitempty"`
	OpenInterest *int64     `json:"openInterest,omitempty"`
	InTheMoney   *bool      `json:"inTheMoney,omitempty"`
	Moneyness    *float64   `json:"moneyness,omitempty"`

	ImpliedVol *float64 `json:"impliedVolatility"`
	IVBid      *float64 `json:"impliedVolatilityBid,omitempty"`
	IVMid      *float64 `json:"impliedVolatilityMid,omitempty"`
	IVAsk      *float64 `json:"impliedVolatilityAsk,omitempty"`
	Delta      *float64 `json:"delta"`
}

// ExpirationGroup is one selected expiration with its processed
// contracts split by side. Label is the holding-period key ("2w",
// "1m", ...) or the bare date on the last-ditch fallback path.
type ExpirationGroup struct {
	Label            string
	Date             string
	DaysToExpiration int
	Calls            []Contract
	Puts             []Contract
}

// Size returns the total number of contracts in the group.
func (g ExpirationGroup) Size() int { return len(g.Calls) + len(g.Puts) }

// UnderlyingQuote is the processed quote for the underlying or an
// index, with change figures relative to the previous close.
type UnderlyingQuote struct {
	Price         float64
	PreviousClose float64
	Change        float64
	PercentChange float64
}

// MarketSnapshot is everything one analytics request produced: the
// underlying quote, an optional VIX quote, and the selected expiration
// groups sorted by days to expiration.
type MarketSnapshot struct {
	Ticker      string
	Timestamp   string
	Stock       UnderlyingQuote
	VIX         *UnderlyingQuote
	Expirations []ExpirationGroup
}

// ptr helpers keep the computation code readable.
func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }
func bptr(v bool) *bool       { return &v }
