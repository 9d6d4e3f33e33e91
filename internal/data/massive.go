package data

import (
	"context"
	"fmt"
	"strings"

	massive "github.com/massive-com/client-go/v2/rest"
	"github.com/massive-com/client-go/v2/rest/models"

	"github.com/contactkeval/option-analytics/internal/logger"
)

// massiveQuoteProvider wraps another Provider and enriches its quotes
// with a previous-close price from the Massive aggregates API. Quote
// enrichment is best effort: if the Massive call fails, the base quote
// is returned unchanged and the request degrades instead of failing.
//
// Expirations and chains pass straight through to the base provider.
type massiveQuoteProvider struct {
	Client *massive.Client
	base   Provider
}

// NewMassiveQuoteProvider layers Massive previous-close enrichment on
// top of base.
func NewMassiveQuoteProvider(apiKey string, base Provider) *massiveQuoteProvider {
	logger.Infof("initializing Massive quote enrichment")

	return &massiveQuoteProvider{
		Client: massive.New(apiKey),
		base:   base,
	}
}

func (p *massiveQuoteProvider) Name() string { return "massive+" + p.base.Name() }

// Secondary falls back to the base provider alone, dropping the
// enrichment layer.
func (p *massiveQuoteProvider) Secondary() Provider { return p.base }

// massiveTicker maps our ticker notation to Massive's. Index tickers
// swap the caret prefix for the "I:" namespace.
func massiveTicker(symbol string) string {
	if strings.HasPrefix(symbol, "^") {
		return "I:" + strings.TrimPrefix(symbol, "^")
	}
	return symbol
}

// GetQuote fetches the base quote and fills in the previous close when
// the base source could not supply one.
func (p *massiveQuoteProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	quote, err := p.base.GetQuote(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	if quote.PrevClose > 0 {
		return quote, nil
	}

	prev, err := p.previousClose(ctx, symbol)
	if err != nil {
		logger.Warnf("GetQuote: previous close unavailable for %s: %v", symbol, err)
		return quote, nil
	}

	quote.PrevClose = prev
	return quote, nil
}

func (p *massiveQuoteProvider) previousClose(ctx context.Context, symbol string) (float64, error) {
	params := models.GetPreviousCloseAggParams{
		Ticker: massiveTicker(symbol),
	}.WithAdjusted(true)

	res, err := p.Client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("previousClose: failed to fetch aggregate: %w", err)
	}
	if len(res.Results) == 0 {
		return 0, fmt.Errorf("previousClose: no aggregate returned for %s", symbol)
	}

	logger.Debugf("previousClose: %s closed at %.2f", symbol, res.Results[0].Close)
	return res.Results[0].Close, nil
}

func (p *massiveQuoteProvider) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	return p.base.GetExpirations(ctx, symbol)
}

func (p *massiveQuoteProvider) GetChain(ctx context.Context, symbol, expiration string) ([]OptionRow, error) {
	return p.base.GetChain(ctx, symbol, expiration)
}
