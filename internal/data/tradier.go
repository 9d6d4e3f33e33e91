// Package data provides market data provider implementations.
//
// This file contains the Tradier-backed Provider used for live quotes,
// option expirations, and option chains with greeks.
//
// Design notes:
//   - Raw HTTP against the Tradier markets API, no SDK
//   - Tradier collapses single-element arrays into bare objects, so the
//     chain and expiration payloads decode through json.RawMessage
//   - Index tickers use caret notation on our side ("^VIX") and plain
//     root symbols on Tradier's ("VIX")
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/contactkeval/option-analytics/internal/calc"
	"github.com/contactkeval/option-analytics/internal/logger"
)

const defaultTradierBaseURL = "https://api.tradier.com"

// tradierProvider implements the Provider interface using the Tradier
// markets API.
type tradierProvider struct {
	// BaseURL is the root endpoint (e.g., https://api.tradier.com).
	BaseURL string

	// Token authenticates requests as a bearer token.
	Token string

	// Client is the HTTP client used to make API requests.
	Client *http.Client

	// secondary is an optional fallback provider.
	secondary Provider
}

// NewTradierProvider constructs a Tradier-backed data provider. An
// empty baseURL selects the production endpoint.
func NewTradierProvider(baseURL, token string, secondary Provider) *tradierProvider {
	logger.Infof("initializing Tradier data provider")

	if baseURL == "" {
		baseURL = defaultTradierBaseURL
	}
	return &tradierProvider{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		secondary: secondary,
	}
}

func (p *tradierProvider) Name() string { return "tradier" }

// Secondary returns the configured fallback Provider, if any.
func (p *tradierProvider) Secondary() Provider { return p.secondary }

// tradierSymbol maps our ticker notation to Tradier's. Index tickers
// drop the leading caret.
func tradierSymbol(symbol string) string {
	return strings.TrimPrefix(symbol, "^")
}

type tradierGreeksDTO struct {
	Delta  float64 `json:"delta"`
	Gamma  float64 `json:"gamma"`
	Theta  float64 `json:"theta"`
	Vega   float64 `json:"vega"`
	BidIv  float64 `json:"bid_iv"`
	MidIv  float64 `json:"mid_iv"`
	AskIv  float64 `json:"ask_iv"`
	SmvVol float64 `json:"smv_vol"`
}

// tradierQuoteDTO keeps its numeric cells loosely typed: Tradier
// serves null and occasionally "NaN" for untraded contracts, and one
// bad cell must not abort the decode of a whole chain. Conversion goes
// through calc.SafeFloat, which maps anything non-numeric to zero.
type tradierQuoteDTO struct {
	Symbol         string            `json:"symbol"`
	LastPrice      any               `json:"last"`
	Bid            any               `json:"bid"`
	Ask            any               `json:"ask"`
	Prevclose      any               `json:"prevclose"`
	Volume         any               `json:"volume"`
	OpenInterest   any               `json:"open_interest"`
	Strike         any               `json:"strike"`
	ExpirationDate string            `json:"expiration_date"`
	OptionType     string            `json:"option_type"`
	Greeks         *tradierGreeksDTO `json:"greeks"`
}

type tradierQuotesResp struct {
	Quotes struct {
		Quote *json.RawMessage `json:"quote"`
	} `json:"quotes"`
}

type tradierExpirationsResp struct {
	Expirations struct {
		Date *json.RawMessage `json:"date"`
	} `json:"expirations"`
}

type tradierChainResp struct {
	Options struct {
		Option *json.RawMessage `json:"option"`
	} `json:"options"`
}

// decodeOneOrMany unmarshals a Tradier payload that may be either a
// single object or an array of objects.
func decodeOneOrMany[T any](raw *json.RawMessage) ([]T, error) {
	if raw == nil {
		return nil, nil
	}
	var many []T
	if listErr := json.Unmarshal(*raw, &many); listErr == nil {
		return many, nil
	}
	var one T
	if err := json.Unmarshal(*raw, &one); err != nil {
		return nil, fmt.Errorf("decodeOneOrMany: error decoding JSON: %w", err)
	}
	return []T{one}, nil
}

func (p *tradierProvider) get(ctx context.Context, path string, query url.Values, out any) error {
	fullUrl := fmt.Sprintf("%s%s?%s", p.BaseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullUrl, nil)
	if err != nil {
		return fmt.Errorf("tradier: failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", p.Token))

	logger.Tracef("fetching %s", req.URL.String())

	res, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("tradier: query failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBytes, readErr := io.ReadAll(res.Body)
		if readErr == nil && len(errBytes) > 0 {
			logger.Errorf("tradier: request failed: %s", string(errBytes))
		}
		return fmt.Errorf("tradier: invalid status code: %s", res.Status)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("tradier: failed to decode json: %w", err)
	}
	return nil
}

// GetQuote returns the latest quote for the symbol.
func (p *tradierProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	query := url.Values{}
	query.Add("symbols", tradierSymbol(symbol))

	var resp tradierQuotesResp
	if err := p.get(ctx, "/v1/markets/quotes", query, &resp); err != nil {
		return Quote{}, fmt.Errorf("GetQuote: %w", err)
	}

	quotes, err := decodeOneOrMany[tradierQuoteDTO](resp.Quotes.Quote)
	if err != nil {
		return Quote{}, fmt.Errorf("GetQuote: %w", err)
	}
	if len(quotes) == 0 {
		return Quote{}, fmt.Errorf("GetQuote: no quote returned for %s", symbol)
	}

	q := quotes[0]
	last := calc.SafeFloat(q.LastPrice)
	if last <= 0 {
		return Quote{}, fmt.Errorf("GetQuote: no last price for %s", symbol)
	}

	return Quote{
		Symbol:    symbol,
		Last:      last,
		PrevClose: calc.SafeFloat(q.Prevclose),
	}, nil
}

// GetExpirations lists the available option expiration dates for the
// symbol in ascending order.
func (p *tradierProvider) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	query := url.Values{}
	query.Add("symbol", tradierSymbol(symbol))
	query.Add("includeAllRoots", "true")
	query.Add("strikes", "false")

	var resp tradierExpirationsResp
	if err := p.get(ctx, "/v1/markets/options/expirations", query, &resp); err != nil {
		return nil, fmt.Errorf("GetExpirations: %w", err)
	}

	dates, err := decodeOneOrMany[string](resp.Expirations.Date)
	if err != nil {
		return nil, fmt.Errorf("GetExpirations: %w", err)
	}

	sort.Strings(dates)
	logger.Debugf("GetExpirations: %s has %d expirations", symbol, len(dates))
	return dates, nil
}

// GetChain returns the raw option chain for one expiration date,
// including greeks where Tradier supplies them.
func (p *tradierProvider) GetChain(ctx context.Context, symbol, expiration string) ([]OptionRow, error) {
	query := url.Values{}
	query.Add("symbol", tradierSymbol(symbol))
	query.Add("expiration", expiration)
	query.Add("greeks", "true")

	var resp tradierChainResp
	if err := p.get(ctx, "/v1/markets/options/chains", query, &resp); err != nil {
		return nil, fmt.Errorf("GetChain: %w", err)
	}

	options, err := decodeOneOrMany[tradierQuoteDTO](resp.Options.Option)
	if err != nil {
		return nil, fmt.Errorf("GetChain: %w", err)
	}

	rows := make([]OptionRow, 0, len(options))
	for _, o := range options {
		row := OptionRow{
			Symbol:       o.Symbol,
			Type:         o.OptionType,
			Expiration:   o.ExpirationDate,
			Strike:       calc.SafeFloat(o.Strike),
			Last:         calc.SafeFloat(o.LastPrice),
			Bid:          calc.SafeFloat(o.Bid),
			Ask:          calc.SafeFloat(o.Ask),
			PrevClose:    calc.SafeFloat(o.Prevclose),
			Volume:       int64(calc.SafeFloat(o.Volume)),
			OpenInterest: int64(calc.SafeFloat(o.OpenInterest)),
		}
		if o.Greeks != nil {
			if o.Greeks.MidIv > 0 {
				iv := o.Greeks.MidIv
				row.IV = &iv
			}
			if o.Greeks.Delta != 0 {
				delta := o.Greeks.Delta
				row.Delta = &delta
			}
		}
		rows = append(rows, row)
	}

	logger.Debugf("GetChain: %s %s returned %d contracts", symbol, expiration, len(rows))
	return rows, nil
}
