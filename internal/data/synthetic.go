package data

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/contactkeval/option-analytics/internal/pricing"
	"github.com/contactkeval/option-analytics/internal/timeutil"
)

// synthProvider implements Provider with generated market data. Quotes
// and chains are deterministic per symbol, so the same ticker always
// produces the same snapshot within a day. Used when no API keys are
// configured, and as the terminal fallback in a provider chain.
type synthProvider struct {
	secondary Provider
}

func NewSyntheticProvider() Provider { return &synthProvider{} }

func (p *synthProvider) Name() string { return "synthetic" }

func (p *synthProvider) Secondary() Provider { return p.secondary }

// symbolSeed derives a stable per-symbol seed.
func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	return int64(h.Sum64() & math.MaxInt64)
}

// syntheticSpot derives a stable price level for a symbol. Index
// tickers sit low, everything else lands between 50 and 450.
func syntheticSpot(symbol string) float64 {
	if strings.HasPrefix(symbol, "^") {
		return 14.0 + float64(symbolSeed(symbol)%800)/100.0
	}
	return 50.0 + float64(symbolSeed(symbol)%40000)/100.0
}

func (p *synthProvider) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	if p.secondary != nil {
		return p.secondary.GetQuote(ctx, symbol)
	}
	last := syntheticSpot(symbol)
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))
	drift := 1.0 + rng.NormFloat64()*0.01
	return Quote{
		Symbol:    symbol,
		Last:      last,
		PrevClose: math.Round(last/drift*100) / 100,
	}, nil
}

// GetExpirations returns the next ten Fridays, which covers every
// target holding period with room to spare.
func (p *synthProvider) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	if p.secondary != nil {
		return p.secondary.GetExpirations(ctx, symbol)
	}

	cur := timeutil.Now()
	for cur.Weekday() != time.Friday {
		cur = cur.AddDate(0, 0, 1)
	}

	out := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		out = append(out, cur.Format("2006-01-02"))
		cur = cur.AddDate(0, 0, 7)
	}
	return out, nil
}

// GetChain generates calls and puts on a strike grid spanning roughly
// ±25% around the spot, priced off a volatility smile so the solver
// recovers sensible values.
func (p *synthProvider) GetChain(ctx context.Context, symbol, expiration string) ([]OptionRow, error) {
	if p.secondary != nil {
		return p.secondary.GetChain(ctx, symbol, expiration)
	}

	exp, err := timeutil.ParseExpiration(expiration)
	if err != nil {
		return nil, err
	}

	spot := syntheticSpot(symbol)
	years := timeutil.YearsToExpiration(exp, timeutil.Now())
	rng := rand.New(rand.NewSource(symbolSeed(symbol + expiration)))

	step := strikeStep(spot)
	atm := math.Round(spot/step) * step

	var rows []OptionRow
	for offset := -12; offset <= 12; offset++ {
		strike := atm + float64(offset)*step
		if strike <= 0 {
			continue
		}
		moneyness := strike / spot
		sigma := 0.18 + 0.4*math.Abs(moneyness-1)

		for _, side := range []string{"call", "put"} {
			isCall := side == "call"
			price := pricing.BlackScholesPrice(isCall, spot, strike, years, chainRiskFreeRate, sigma)
			if price < 0.01 {
				price = 0.01
			}
			price = math.Round(price*100) / 100

			spread := math.Max(0.02, price*0.02)
			rows = append(rows, OptionRow{
				Symbol:       occSymbol(symbol, exp, isCall, strike),
				Type:         side,
				Expiration:   expiration,
				Strike:       strike,
				Last:         price,
				Bid:          math.Max(0.01, math.Round((price-spread/2)*100)/100),
				Ask:          math.Round((price+spread/2)*100) / 100,
				Volume:       int64(rng.Intn(5000)),
				OpenInterest: int64(100 + rng.Intn(20000)),
			})
		}
	}
	return rows, nil
}

// chainRiskFreeRate prices the synthetic chain; it intentionally
// matches the calculator default so solved vols land on the smile.
const chainRiskFreeRate = 0.05

// strikeStep picks a listing-style strike interval for a price level.
func strikeStep(spot float64) float64 {
	switch {
	case spot < 25:
		return 0.5
	case spot < 100:
		return 1
	case spot < 250:
		return 2.5
	default:
		return 5
	}
}

// occSymbol renders an OCC-style contract symbol, e.g.
// SPY240119C00450000.
func occSymbol(underlying string, exp time.Time, isCall bool, strike float64) string {
	side := "P"
	if isCall {
		side = "C"
	}
	root := strings.TrimPrefix(strings.ToUpper(underlying), "^")
	return root + exp.Format("060102") + side + padStrike(strike)
}

func padStrike(strike float64) string {
	milli := int64(math.Round(strike * 1000))
	digits := []byte("00000000")
	for i := len(digits) - 1; i >= 0 && milli > 0; i-- {
		digits[i] = byte('0' + milli%10)
		milli /= 10
	}
	return string(digits)
}
