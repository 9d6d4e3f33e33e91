package data

import (
	"os"

	"github.com/contactkeval/option-analytics/internal/logger"
)

// NewProviderFromEnv assembles the provider chain from environment
// configuration:
//
//	TRADIER_API_KEY   enables live Tradier data
//	TRADIER_BASE_URL  overrides the Tradier endpoint (sandbox use)
//	MASSIVE_API_KEY   layers Massive previous-close enrichment on top
//
// The synthetic provider always terminates the chain, so a request can
// degrade all the way down instead of failing outright.
func NewProviderFromEnv() Provider {
	var provider Provider = NewSyntheticProvider()

	if token := os.Getenv("TRADIER_API_KEY"); token != "" {
		provider = NewTradierProvider(os.Getenv("TRADIER_BASE_URL"), token, provider)
	} else {
		logger.Warnf("TRADIER_API_KEY not set, serving synthetic data")
	}

	if apiKey := os.Getenv("MASSIVE_API_KEY"); apiKey != "" {
		provider = NewMassiveQuoteProvider(apiKey, provider)
	}

	return provider
}
