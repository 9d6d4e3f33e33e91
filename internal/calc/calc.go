// Package calc holds the small numeric utilities shared by the chain
// processing pipeline: percentage change, mid price, moneyness, and
// tolerant numeric coercion for raw provider rows.
package calc

import "math"

// Default moneyness band: strikes within ±15% of the underlying.
const (
	MinMoneyness = 0.85
	MaxMoneyness = 1.15
)

// PercentChange returns the percentage change from previous to current,
// rounded to 2 decimals. Returns 0 when previous is zero.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return Round2(((current - previous) / previous) * 100)
}

// MidPrice returns the midpoint of bid and ask. If only one side is a
// valid positive quote, that side is returned; if neither is, zero.
func MidPrice(bid, ask float64) float64 {
	if bid <= 0 && ask <= 0 {
		return 0.0
	}
	if bid <= 0 {
		return ask
	}
	if ask <= 0 {
		return bid
	}
	return (bid + ask) / 2
}

// Moneyness returns strike/underlying rounded to 3 decimals, or 0 when
// the underlying price is zero.
func Moneyness(strike, underlying float64) float64 {
	if underlying == 0 {
		return 0.0
	}
	return Round3(strike / underlying)
}

// WithinMoneynessRange reports whether m lies in [lo, hi] inclusive.
func WithinMoneynessRange(m, lo, hi float64) bool {
	return lo <= m && m <= hi
}

// SafeFloat coerces an arbitrary decoded JSON value to a float64,
// returning 0 for nil or non-numeric input. Raw provider rows go
// through this so a malformed field never aborts a parse.
func SafeFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0.0
	}
}

// Round2 rounds to 2 decimal places (price-like fields).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places (moneyness).
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round4 rounds to 4 decimal places (IV and delta).
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
