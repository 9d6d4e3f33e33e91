package chain

import (
	"time"

	"github.com/contactkeval/option-analytics/internal/calc"
	"github.com/contactkeval/option-analytics/internal/data"
	"github.com/contactkeval/option-analytics/internal/logger"
	"github.com/contactkeval/option-analytics/internal/pricing"
	"github.com/contactkeval/option-analytics/internal/timeutil"
)

// DefaultRiskFreeRate is the annualized rate used when none is
// configured.
const DefaultRiskFreeRate = 0.05

// DefaultIV is assumed for a quoted contract whose implied volatility
// cannot be recovered from any of its prices.
const DefaultIV = 0.20

const ivCacheCapacity = 128

// Calculator computes per-contract analytics. Each instance owns its
// own implied-vol cache, so calculators can be created per request
// without sharing state.
type Calculator struct {
	riskFreeRate float64
	cache        *ivCache
}

// NewCalculator returns a Calculator using the given annualized
// risk-free rate. Non-positive rates fall back to DefaultRiskFreeRate.
func NewCalculator(riskFreeRate float64) *Calculator {
	if riskFreeRate <= 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	return &Calculator{
		riskFreeRate: riskFreeRate,
		cache:        newIVCache(ivCacheCapacity),
	}
}

// validIV reports whether a volatility is usable: positive and at most
// pricing.MaxVol.
func validIV(iv float64) bool {
	return iv > 0 && iv <= pricing.MaxVol
}

// ImpliedVol solves for the implied volatility of one observed price,
// consulting the cache first.
func (c *Calculator) ImpliedVol(isCall bool, price, spot, strike, years float64) (float64, error) {
	key := newIVKey(isCall, price, spot, strike, years)
	if iv, ok := c.cache.get(key); ok {
		return iv, nil
	}
	iv, err := pricing.ImpliedVol(isCall, price, spot, strike, years, c.riskFreeRate)
	if err != nil {
		return 0, err
	}
	c.cache.put(key, iv)
	return iv, nil
}

// ComputeIV is the tolerant form of ImpliedVol: it returns the solved
// volatility rounded to 4 decimals, or nil when the price is not
// positive, the solve fails, or the result falls outside the valid
// range.
func (c *Calculator) ComputeIV(isCall bool, price, spot, strike, years float64) *float64 {
	if price <= 0 {
		return nil
	}
	iv, err := c.ImpliedVol(isCall, price, spot, strike, years)
	if err != nil || !validIV(iv) {
		return nil
	}
	return fptr(calc.Round4(iv))
}

// ComputeDelta returns the Black-Scholes delta rounded to 4 decimals,
// or nil when the volatility is not usable.
func (c *Calculator) ComputeDelta(isCall bool, spot, strike, years, sigma float64) *float64 {
	if !validIV(sigma) || spot <= 0 || strike <= 0 {
		return nil
	}
	return fptr(calc.Round4(pricing.Delta(isCall, spot, strike, years, c.riskFreeRate, sigma)))
}

// ProcessChain computes analytics for every raw row. Contracts whose
// implied volatility cannot be established from stored greeks, the
// last price, or the quoted spread are dropped; the second return
// value counts the drops.
func (c *Calculator) ProcessChain(rows []data.OptionRow, spot float64, now time.Time) ([]Contract, int) {
	out := make([]Contract, 0, len(rows))
	failed := 0

	for _, row := range rows {
		contract, ok := c.processRow(row, spot, now)
		if !ok {
			failed++
			continue
		}
		out = append(out, contract)
	}

	if failed > 0 {
		logger.Debugf("ProcessChain: dropped %d of %d contracts without implied volatility", failed, len(rows))
	}
	return out, failed
}

// ProcessChainBasic is the degraded path: no solver calls, stored
// greeks passed through as-is and DefaultIV assumed for two-sided
// quotes without one. Used when full processing fails.
func (c *Calculator) ProcessChainBasic(rows []data.OptionRow, spot float64) []Contract {
	out := make([]Contract, 0, len(rows))
	for _, row := range rows {
		if row.Strike <= 0 {
			continue
		}
		contract := baseContract(row, spot)

		if row.IV != nil && validIV(*row.IV) {
			contract.ImpliedVol = fptr(calc.Round4(*row.IV))
		} else if row.Bid > 0 && row.Ask > 0 {
			contract.ImpliedVol = fptr(DefaultIV)
		}
		if row.Delta != nil && *row.Delta >= -1 && *row.Delta <= 1 {
			contract.Delta = fptr(calc.Round4(*row.Delta))
		}
		if contract.ImpliedVol == nil {
			continue
		}
		out = append(out, contract)
	}
	return out
}

func (c *Calculator) processRow(row data.OptionRow, spot float64, now time.Time) (Contract, bool) {
	if row.Strike <= 0 {
		return Contract{}, false
	}

	exp, err := timeutil.ParseExpiration(row.Expiration)
	if err != nil {
		return Contract{}, false
	}
	years := timeutil.YearsToExpiration(exp, now)
	isCall := OptionType(row.Type).IsCall()

	contract := baseContract(row, spot)

	// Implied volatility: stored greeks first, then a solve from the
	// last traded price, then the default for a live two-sided quote.
	if row.IV != nil && validIV(*row.IV) {
		contract.ImpliedVol = fptr(calc.Round4(*row.IV))
	} else {
		contract.ImpliedVol = c.ComputeIV(isCall, row.Last, spot, row.Strike, years)
	}
	if contract.ImpliedVol == nil && row.Bid > 0 && row.Ask > 0 {
		contract.ImpliedVol = fptr(DefaultIV)
	}
	if contract.ImpliedVol == nil {
		return Contract{}, false
	}

	// Per-price volatilities are each solved independently and are
	// individually optional.
	contract.IVBid = c.ComputeIV(isCall, row.Bid, spot, row.Strike, years)
	contract.IVAsk = c.ComputeIV(isCall, row.Ask, spot, row.Strike, years)
	contract.IVMid = c.ComputeIV(isCall, calc.MidPrice(row.Bid, row.Ask), spot, row.Strike, years)

	// Delta: stored value when the provider supplied a sane one,
	// otherwise derived from the resolved volatility. Stays nil when
	// neither works.
	if row.Delta != nil && *row.Delta >= -1 && *row.Delta <= 1 && *row.Delta != 0 {
		contract.Delta = fptr(calc.Round4(*row.Delta))
	} else {
		contract.Delta = c.ComputeDelta(isCall, spot, row.Strike, years, *contract.ImpliedVol)
	}

	return contract, true
}

// baseContract fills the price and volume fields shared by the full
// and degraded paths.
func baseContract(row data.OptionRow, spot float64) Contract {
	contract := Contract{
		Symbol:     row.Symbol,
		Type:       OptionType(row.Type),
		Expiration: row.Expiration,
		Strike:     row.Strike,
		LastPrice:  calc.Round2(row.Last),
	}

	if row.Bid > 0 {
		contract.Bid = fptr(calc.Round2(row.Bid))
	}
	if row.Ask > 0 {
		contract.Ask = fptr(calc.Round2(row.Ask))
	}
	if mid := calc.MidPrice(row.Bid, row.Ask); mid > 0 {
		contract.MidPrice = fptr(calc.Round2(mid))
	}
	if row.PrevClose > 0 {
		contract.Change = fptr(calc.Round2(row.Last - row.PrevClose))
		contract.PctChange = fptr(calc.PercentChange(row.Last, row.PrevClose))
	}
	if row.Volume > 0 {
		contract.Volume = iptr(row.Volume)
	}
	if row.OpenInterest > 0 {
		contract.OpenInterest = iptr(row.OpenInterest)
	}
	if spot > 0 {
		contract.Moneyness = fptr(calc.Moneyness(row.Strike, spot))
		if OptionType(row.Type).IsCall() {
			contract.InTheMoney = bptr(spot > row.Strike)
		} else {
			contract.InTheMoney = bptr(spot < row.Strike)
		}
	}
	return contract
}

// FilterValid drops contracts that would be useless to a client: a
// non-positive strike or last price, or neither an implied volatility
// nor a delta.
func FilterValid(contracts []Contract) []Contract {
	out := make([]Contract, 0, len(contracts))
	for _, c := range contracts {
		if c.Strike <= 0 || c.LastPrice <= 0 {
			continue
		}
		if c.ImpliedVol == nil && c.Delta == nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterMoneyness keeps contracts whose strike lies within the given
// inclusive moneyness band around the underlying price. The band is
// checked against the rounded moneyness, so the filter always agrees
// with the contract's serialized moneyness field. When the underlying
// price is not positive the input is returned unchanged.
func FilterMoneyness(contracts []Contract, spot, lo, hi float64) []Contract {
	if spot <= 0 {
		return contracts
	}
	out := make([]Contract, 0, len(contracts))
	for _, c := range contracts {
		if calc.WithinMoneynessRange(calc.Moneyness(c.Strike, spot), lo, hi) {
			out = append(out, c)
		}
	}
	return out
}
