// Package processor orchestrates one analytics request end to end:
// quote fetching, expiration selection, chain processing, and the
// layered fallbacks that keep a partial answer flowing when a stage
// fails.
package processor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/contactkeval/option-analytics/internal/apperrors"
	"github.com/contactkeval/option-analytics/internal/calc"
	"github.com/contactkeval/option-analytics/internal/chain"
	"github.com/contactkeval/option-analytics/internal/data"
	"github.com/contactkeval/option-analytics/internal/logger"
	"github.com/contactkeval/option-analytics/internal/timeutil"
)

// VIXSymbol is fetched alongside every stock quote as market context.
const VIXSymbol = "^VIX"

// firstExpirationsLimit bounds the last-ditch fallback that ignores
// the target holding periods entirely.
const firstExpirationsLimit = 4

// Processor builds market snapshots from a data provider chain. Safe
// for concurrent use; per-request state lives in the request.
type Processor struct {
	provider     data.Provider
	riskFreeRate float64

	// now is swappable for tests.
	now func() time.Time
}

// NewProcessor returns a Processor on top of the given provider chain.
// A non-positive riskFreeRate selects the calculator default.
func NewProcessor(provider data.Provider, riskFreeRate float64) *Processor {
	return &Processor{
		provider:     provider,
		riskFreeRate: riskFreeRate,
		now:          timeutil.Now,
	}
}

// providers flattens the fallback chain, primary first.
func (p *Processor) providers() []data.Provider {
	var out []data.Provider
	for prov := p.provider; prov != nil; prov = prov.Secondary() {
		out = append(out, prov)
	}
	return out
}

// fetchQuote walks the provider chain until one returns a quote.
func (p *Processor) fetchQuote(ctx context.Context, symbol string) (data.Quote, error) {
	var strategies []Strategy[data.Quote]
	for _, prov := range p.providers() {
		prov := prov
		strategies = append(strategies, Strategy[data.Quote]{
			Name: prov.Name() + " quote",
			Run:  func() (data.Quote, error) { return prov.GetQuote(ctx, symbol) },
		})
	}
	return RunFallbacks(fmt.Sprintf("quote %s", symbol), strategies)
}

// fetchExpirations walks the provider chain until one returns a
// non-empty expiration list.
func (p *Processor) fetchExpirations(ctx context.Context, symbol string) ([]string, error) {
	var strategies []Strategy[[]string]
	for _, prov := range p.providers() {
		prov := prov
		strategies = append(strategies, Strategy[[]string]{
			Name: prov.Name() + " expirations",
			Run: func() ([]string, error) {
				dates, err := prov.GetExpirations(ctx, symbol)
				if err != nil {
					return nil, err
				}
				if len(dates) == 0 {
					return nil, fmt.Errorf("empty expiration list")
				}
				return dates, nil
			},
		})
	}
	return RunFallbacks(fmt.Sprintf("expirations %s", symbol), strategies)
}

// fetchChain walks the provider chain for one expiration, memoizing
// per request so the fallback strategies never refetch a date.
func (p *Processor) fetchChain(ctx context.Context, symbol, date string, cache map[string][]data.OptionRow) ([]data.OptionRow, error) {
	if rows, ok := cache[date]; ok {
		return rows, nil
	}
	var strategies []Strategy[[]data.OptionRow]
	for _, prov := range p.providers() {
		prov := prov
		strategies = append(strategies, Strategy[[]data.OptionRow]{
			Name: prov.Name() + " chain",
			Run:  func() ([]data.OptionRow, error) { return prov.GetChain(ctx, symbol, date) },
		})
	}
	rows, err := RunFallbacks(fmt.Sprintf("chain %s %s", symbol, date), strategies)
	if err != nil {
		return nil, err
	}
	cache[date] = rows
	return rows, nil
}

// BuildSnapshot runs the full pipeline for one ticker.
//
// Failure modes: a VALIDATION_ERROR for a malformed ticker, and a
// DATA_FETCH_ERROR naming the ticker when no quote, no expirations, or
// no surviving contracts can be produced. Everything softer than that
// degrades with a warning.
func (p *Processor) BuildSnapshot(ctx context.Context, rawTicker string) (snapshot *chain.MarketSnapshot, err error) {
	// A bug in chain processing must surface as a calculation failure,
	// not take down the server.
	defer func() {
		if r := recover(); r != nil {
			snapshot = nil
			err = apperrors.Calculation(
				fmt.Sprintf("options processing failed for %s", rawTicker),
				"chain_processing", fmt.Errorf("panic: %v", r))
		}
	}()

	ticker, err := ValidateTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	now := p.now()

	quote, err := p.fetchQuote(ctx, ticker)
	if err != nil {
		return nil, apperrors.DataFetch(
			fmt.Sprintf("unable to fetch quote data for %s", ticker),
			p.provider.Name(), ticker, err)
	}

	// VIX context is best effort; a snapshot without it is still a
	// snapshot.
	var vix *chain.UnderlyingQuote
	if vixQuote, vixErr := p.fetchQuote(ctx, VIXSymbol); vixErr == nil {
		v := toUnderlying(vixQuote)
		vix = &v
	} else {
		logger.Warnf("BuildSnapshot: VIX quote unavailable: %v", vixErr)
	}

	expirations, err := p.fetchExpirations(ctx, ticker)
	if err != nil {
		return nil, apperrors.DataFetch(
			fmt.Sprintf("no options data available for %s", ticker),
			p.provider.Name(), ticker, err)
	}

	calculator := chain.NewCalculator(p.riskFreeRate)
	chainCache := make(map[string][]data.OptionRow)

	groups, err := RunFallbacks(fmt.Sprintf("chains %s", ticker), []Strategy[[]chain.ExpirationGroup]{
		{
			Name: "target expirations, moneyness filtered",
			Run: func() ([]chain.ExpirationGroup, error) {
				return p.targetGroups(ctx, calculator, ticker, quote.Last, expirations, now, chainCache, true)
			},
		},
		{
			Name: "target expirations, unfiltered",
			Run: func() ([]chain.ExpirationGroup, error) {
				return p.targetGroups(ctx, calculator, ticker, quote.Last, expirations, now, chainCache, false)
			},
		},
		{
			Name: "first expirations, basic processing",
			Run: func() ([]chain.ExpirationGroup, error) {
				return p.firstGroups(ctx, calculator, ticker, quote.Last, expirations, now, chainCache)
			},
		},
	})
	if err != nil {
		return nil, apperrors.DataFetch(
			fmt.Sprintf("no option contracts available for %s", ticker),
			p.provider.Name(), ticker, err)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].DaysToExpiration < groups[j].DaysToExpiration
	})

	return &chain.MarketSnapshot{
		Ticker:      ticker,
		Timestamp:   timeutil.FormatTimestamp(now),
		Stock:       toUnderlying(quote),
		VIX:         vix,
		Expirations: groups,
	}, nil
}

// targetGroups builds one group per holding period from the nearest
// available expirations, fully processed and optionally filtered to
// the moneyness band.
func (p *Processor) targetGroups(
	ctx context.Context,
	calculator *chain.Calculator,
	ticker string,
	spot float64,
	expirations []string,
	now time.Time,
	cache map[string][]data.OptionRow,
	filterMoneyness bool,
) ([]chain.ExpirationGroup, error) {

	targets, err := timeutil.NearestExpirations(expirations, now)
	if err != nil {
		return nil, fmt.Errorf("targetGroups: %w", err)
	}

	// A sparse chain can resolve several holding periods to the same
	// expiration; each distinct date appears once, under the earliest
	// label that selected it.
	seen := make(map[string]bool, len(targets))

	var groups []chain.ExpirationGroup
	for _, label := range timeutil.PeriodLabels() {
		match := targets[label]
		if seen[match.Date] {
			continue
		}
		seen[match.Date] = true

		rows, err := p.fetchChain(ctx, ticker, match.Date, cache)
		if err != nil {
			logger.Warnf("targetGroups: skipping %s (%s): %v", label, match.Date, err)
			continue
		}

		contracts, failed := calculator.ProcessChain(rows, spot, now)
		if failed > 0 {
			logger.Debugf("targetGroups: %s %s dropped %d contracts", ticker, match.Date, failed)
		}
		contracts = chain.FilterValid(contracts)
		if filterMoneyness {
			contracts = chain.FilterMoneyness(contracts, spot, calc.MinMoneyness, calc.MaxMoneyness)
		}

		group := buildGroup(label, match.Date, match.Days, contracts)
		if group.Size() == 0 {
			continue
		}
		groups = append(groups, group)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("targetGroups: no contracts survived for %s", ticker)
	}
	return groups, nil
}

// firstGroups is the last-ditch path: the first few raw expirations,
// degraded processing, no filters. Labels are the bare dates.
func (p *Processor) firstGroups(
	ctx context.Context,
	calculator *chain.Calculator,
	ticker string,
	spot float64,
	expirations []string,
	now time.Time,
	cache map[string][]data.OptionRow,
) ([]chain.ExpirationGroup, error) {

	limit := firstExpirationsLimit
	if len(expirations) < limit {
		limit = len(expirations)
	}

	var groups []chain.ExpirationGroup
	for _, date := range expirations[:limit] {
		rows, err := p.fetchChain(ctx, ticker, date, cache)
		if err != nil {
			continue
		}

		contracts := calculator.ProcessChainBasic(rows, spot)
		exp, parseErr := timeutil.ParseExpiration(date)
		if parseErr != nil {
			continue
		}

		group := buildGroup(date, date, timeutil.DaysToExpiration(exp, now), contracts)
		if group.Size() == 0 {
			continue
		}
		groups = append(groups, group)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("firstGroups: no contracts in first %d expirations for %s", limit, ticker)
	}
	return groups, nil
}

// buildGroup splits processed contracts by side.
func buildGroup(label, date string, days int, contracts []chain.Contract) chain.ExpirationGroup {
	group := chain.ExpirationGroup{
		Label:            label,
		Date:             date,
		DaysToExpiration: days,
	}
	for _, c := range contracts {
		if c.Type.IsCall() {
			group.Calls = append(group.Calls, c)
		} else {
			group.Puts = append(group.Puts, c)
		}
	}
	return group
}

// toUnderlying converts a raw quote into the response form, rounding
// prices and deriving change figures. When the previous close is
// unavailable it degrades to the current price with zero change, so
// the response shape stays stable.
func toUnderlying(q data.Quote) chain.UnderlyingQuote {
	if q.PrevClose <= 0 {
		price := calc.Round2(q.Last)
		return chain.UnderlyingQuote{Price: price, PreviousClose: price}
	}
	return chain.UnderlyingQuote{
		Price:         calc.Round2(q.Last),
		PreviousClose: calc.Round2(q.PrevClose),
		Change:        calc.Round2(q.Last - q.PrevClose),
		PercentChange: calc.PercentChange(q.Last, q.PrevClose),
	}
}
