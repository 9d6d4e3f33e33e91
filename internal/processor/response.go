package processor

import "github.com/contactkeval/option-analytics/internal/chain"

// QuotePayload is the wire form of an underlying or index quote.
type QuotePayload struct {
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// ExpirationPayload is one expiration group on the wire. The label is
// omitted on the last-ditch fallback path, where groups are keyed by
// date alone.
type ExpirationPayload struct {
	Expiration       string           `json:"expiration"`
	DaysToExpiration int              `json:"daysToExpiration"`
	ExpirationLabel  string           `json:"expirationLabel,omitempty"`
	Calls            []chain.Contract `json:"calls"`
	Puts             []chain.Contract `json:"puts"`
}

// Response is the top-level success body for an analytics request.
// ExpirationDates preserves the snapshot's days-to-expiration order.
type Response struct {
	Ticker          string              `json:"ticker"`
	Timestamp       string              `json:"timestamp"`
	Stock           QuotePayload        `json:"stock"`
	VIX             *QuotePayload       `json:"vix,omitempty"`
	ExpirationDates []ExpirationPayload `json:"expirationDates"`
}

// ToResponse renders a snapshot into its wire form. Contract-level
// rounding already happened during processing; this only reshapes.
func ToResponse(s *chain.MarketSnapshot) Response {
	resp := Response{
		Ticker:          s.Ticker,
		Timestamp:       s.Timestamp,
		Stock:           toQuotePayload(s.Stock),
		ExpirationDates: make([]ExpirationPayload, 0, len(s.Expirations)),
	}
	if s.VIX != nil {
		v := toQuotePayload(*s.VIX)
		resp.VIX = &v
	}

	for _, g := range s.Expirations {
		payload := ExpirationPayload{
			Expiration:       g.Date,
			DaysToExpiration: g.DaysToExpiration,
			Calls:            emptyIfNil(g.Calls),
			Puts:             emptyIfNil(g.Puts),
		}
		if g.Label != g.Date {
			payload.ExpirationLabel = g.Label
		}
		resp.ExpirationDates = append(resp.ExpirationDates, payload)
	}
	return resp
}

func toQuotePayload(q chain.UnderlyingQuote) QuotePayload {
	return QuotePayload{
		Price:         q.Price,
		PreviousClose: q.PreviousClose,
		Change:        q.Change,
		PercentChange: q.PercentChange,
	}
}

// emptyIfNil keeps one-sided groups rendering as [] rather than null.
func emptyIfNil(contracts []chain.Contract) []chain.Contract {
	if contracts == nil {
		return []chain.Contract{}
	}
	return contracts
}
