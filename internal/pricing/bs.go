package pricing

import (
	"fmt"
	"math"
)

const sqrt2Pi = 2.5066282746310002

// MaxVol caps solver output at 500% annualized volatility; anything
// above it is treated as a failed fit.
const MaxVol = 5.0

// BlackScholesPrice calculates the price of a European option using the Black-Scholes model.
//
// Parameters:
//   - isCall: true for call option, false for put option
//   - S: spot price of the underlying asset
//   - K: strike price of the option
//   - T: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// Returns:
//
//	The theoretical price of the option. If time to expiry or volatility is zero or negative,
//	returns the intrinsic value of the option.
//
// Note: This implementation uses the standard Black-Scholes formula for European options
// and relies on normCDF for the cumulative standard normal distribution function.
func BlackScholesPrice(
	isCall bool,
	S float64, // spot
	K float64, // strike
	T float64, // time to expiry in years
	r float64, // risk-free rate
	sigma float64, // volatility
) float64 {

	if T <= 0 || sigma <= 0 {
		if isCall {
			return math.Max(0, S-K) // intrinsic fallback
		}
		return math.Max(0, K-S)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if isCall {
		return S*normCDF(d1) - K*math.Exp(-r*T)*normCDF(d2)
	}
	return K*math.Exp(-r*T)*normCDF(-d2) - S*normCDF(-d1)
}

// BlackScholesVega calculates the vega of a European option using the Black-Scholes model.
// Vega measures the sensitivity of the option price to changes in the underlying asset's volatility.
//
// Parameters:
//   - S: Current price of the underlying asset
//   - K: Strike price of the option
//   - T: Time to expiration in years
//   - r: Risk-free interest rate
//   - sigma: Volatility (standard deviation) of the underlying asset's returns
//
// Returns:
//
//	The vega value, representing the change in option price per 1% change in volatility.
//	Returns 0 if T or sigma is non-positive.
func BlackScholesVega(
	S float64,
	K float64,
	T float64,
	r float64,
	sigma float64,
) float64 {

	if T <= 0 || sigma <= 0 {
		return 0
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return S * normPDF(d1) * math.Sqrt(T)
}

// Delta calculates the Black-Scholes delta of a European option: the
// sensitivity of the option price to a $1 move in the underlying.
// Call deltas lie in [0, 1], put deltas in [-1, 0].
func Delta(
	isCall bool,
	S, K, T, r, sigma float64,
) float64 {

	if T <= 0 || sigma <= 0 {
		// Degenerate case: delta collapses to the exercise indicator.
		if isCall {
			if S > K {
				return 1
			}
			return 0
		}
		if S < K {
			return -1
		}
		return 0
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	if isCall {
		return normCDF(d1)
	}
	return normCDF(d1) - 1
}

// ImpliedVol solves for the volatility that makes the Black-Scholes
// price match an observed market price, using the Newton-Raphson method.
//
// Parameters:
//   - isCall: true for call option, false for put option
//   - marketPrice: observed option price (bid, mid, ask, or last)
//   - S: spot price of the underlying
//   - K: strike price
//   - T: time to expiry in years
//   - r: risk-free rate
//
// Returns the implied volatility or an error if inputs are invalid or
// the iteration fails to converge within its limit.
func ImpliedVol(
	isCall bool,
	marketPrice, S, K, T, r float64,
) (float64, error) {

	if T <= 0 {
		return 0, fmt.Errorf("invalid expiry")
	}
	if marketPrice <= 0 || S <= 0 || K <= 0 {
		return 0, fmt.Errorf("invalid price inputs")
	}

	// Initial guess: 20%
	sigma := 0.20

	const (
		maxIter = 100
		tol     = 1e-6
	)

	for i := 0; i < maxIter; i++ {
		price := BlackScholesPrice(isCall, S, K, T, r, sigma)
		diff := price - marketPrice

		if math.Abs(diff) < tol {
			return sigma, nil
		}

		vega := BlackScholesVega(S, K, T, r, sigma)
		if vega < 1e-8 {
			break
		}

		sigma -= diff / vega

		// Guardrails
		if sigma <= 0 {
			sigma = 1e-4
		}
		if sigma > MaxVol {
			sigma = MaxVol
		}
	}

	return 0, fmt.Errorf("implied vol did not converge")
}

// normPDF calculates the probability density function (PDF) of the standard normal distribution.
// It takes a float64 value x and returns the probability density at that point.
// The formula used is: exp(-0.5 * x^2) / sqrt(2π)
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF computes the cumulative distribution function of the standard normal distribution
// for a given value x using the error function approximation.
// It returns a value between 0 and 1 representing the probability that a standard normal
// random variable is less than or equal to x.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
