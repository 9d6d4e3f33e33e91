package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticQuoteDeterministic(t *testing.T) {
	p := NewSyntheticProvider()

	q1, err := p.GetQuote(context.Background(), "SPY")
	require.NoError(t, err)
	q2, err := p.GetQuote(context.Background(), "SPY")
	require.NoError(t, err)

	assert.Equal(t, q1, q2)
	assert.Greater(t, q1.Last, 0.0)
	assert.Greater(t, q1.PrevClose, 0.0)

	other, err := p.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotEqual(t, q1.Last, other.Last)
}

func TestSyntheticIndexQuoteLevel(t *testing.T) {
	p := NewSyntheticProvider()
	q, err := p.GetQuote(context.Background(), "^VIX")
	require.NoError(t, err)
	assert.Greater(t, q.Last, 10.0)
	assert.Less(t, q.Last, 30.0)
}

func TestSyntheticExpirationsAreFridays(t *testing.T) {
	p := NewSyntheticProvider()
	dates, err := p.GetExpirations(context.Background(), "SPY")
	require.NoError(t, err)
	require.Len(t, dates, 10)

	for _, d := range dates {
		day, err := time.Parse("2006-01-02", d)
		require.NoError(t, err)
		assert.Equal(t, time.Friday, day.Weekday())
	}
	// Ascending, one week apart.
	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i])
	}
}

func TestSyntheticChain(t *testing.T) {
	p := NewSyntheticProvider()
	dates, err := p.GetExpirations(context.Background(), "SPY")
	require.NoError(t, err)

	rows, err := p.GetChain(context.Background(), "SPY", dates[3])
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	q, err := p.GetQuote(context.Background(), "SPY")
	require.NoError(t, err)

	calls, puts := 0, 0
	for _, row := range rows {
		assert.Greater(t, row.Strike, 0.0)
		assert.Greater(t, row.Last, 0.0)
		assert.LessOrEqual(t, row.Bid, row.Ask)
		assert.Equal(t, dates[3], row.Expiration)
		assert.NotEmpty(t, row.Symbol)

		// Strikes cluster around the spot.
		assert.InDelta(t, 1.0, row.Strike/q.Last, 0.30)

		switch row.Type {
		case "call":
			calls++
		case "put":
			puts++
		default:
			t.Fatalf("unexpected option type %q", row.Type)
		}
	}
	assert.Equal(t, calls, puts)

	_, err = p.GetChain(context.Background(), "SPY", "not-a-date")
	assert.Error(t, err)
}

func TestOCCSymbol(t *testing.T) {
	exp := time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "SPY240119C00450000", occSymbol("SPY", exp, true, 450))
	assert.Equal(t, "VIX240119P00017500", occSymbol("^VIX", exp, false, 17.5))
}

func TestProviderFromEnv(t *testing.T) {
	t.Setenv("TRADIER_API_KEY", "")
	t.Setenv("MASSIVE_API_KEY", "")
	p := NewProviderFromEnv()
	assert.Equal(t, "synthetic", p.Name())
	assert.Nil(t, p.Secondary())

	t.Setenv("TRADIER_API_KEY", "abc")
	p = NewProviderFromEnv()
	assert.Equal(t, "tradier", p.Name())
	require.NotNil(t, p.Secondary())
	assert.Equal(t, "synthetic", p.Secondary().Name())

	t.Setenv("MASSIVE_API_KEY", "def")
	p = NewProviderFromEnv()
	assert.Equal(t, "massive+tradier", p.Name())
	assert.Equal(t, "tradier", p.Secondary().Name())
}
