package processor

import (
	"strings"

	"github.com/contactkeval/option-analytics/internal/apperrors"
)

// DefaultTicker is served when a request names no symbol.
const DefaultTicker = "SPY"

// ValidateTicker normalizes a raw ticker: whitespace trimmed,
// uppercased, and restricted to alphanumerics plus the '.', '-', and
// '^' used by share classes and indices (BRK.B, BRK-B, ^VIX).
func ValidateTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		return "", apperrors.Validation("ticker symbol is required", "ticker", raw)
	}

	for _, r := range ticker {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '^':
		default:
			return "", apperrors.Validation("ticker symbol contains invalid characters", "ticker", raw)
		}
	}
	return ticker, nil
}
