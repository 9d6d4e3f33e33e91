package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-analytics/internal/data"
	"github.com/contactkeval/option-analytics/internal/processor"
)

func newTestServer() *Server {
	return NewServer(processor.NewProcessor(data.NewSyntheticProvider(), 0.05))
}

func doRequest(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(rec, req)
	return rec
}

func TestOptionsAnalyticsSuccess(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/options-analytics?ticker=SPY")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp processor.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "SPY", resp.Ticker)
	assert.Greater(t, resp.Stock.Price, 0.0)
	assert.Greater(t, resp.Stock.PreviousClose, 0.0)
	assert.NotEmpty(t, resp.ExpirationDates)

	for i, g := range resp.ExpirationDates {
		assert.NotEmpty(t, g.Expiration)
		assert.GreaterOrEqual(t, g.DaysToExpiration, 0)
		assert.NotEmpty(t, g.Calls, g.Expiration)
		assert.NotEmpty(t, g.Puts, g.Expiration)
		if i > 0 {
			assert.GreaterOrEqual(t, g.DaysToExpiration, resp.ExpirationDates[i-1].DaysToExpiration)
		}

		for _, c := range g.Calls {
			assert.Greater(t, c.Strike, 0.0)
			require.NotNil(t, c.ImpliedVol)
			assert.Greater(t, *c.ImpliedVol, 0.0)
		}
	}
}

func TestOptionsAnalyticsDefaultTicker(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/options-analytics")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp processor.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, processor.DefaultTicker, resp.Ticker)
}

func TestOptionsAnalyticsLowercaseNormalized(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/options-analytics?ticker=aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp processor.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Ticker)
}

func TestOptionsAnalyticsInvalidTicker(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/options-analytics?ticker=SP%20Y")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Error     string         `json:"error"`
		ErrorType string         `json:"errorType"`
		Timestamp string         `json:"timestamp"`
		Details   map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	assert.Equal(t, "VALIDATION_ERROR", envelope.ErrorType)
	assert.NotEmpty(t, envelope.Error)
	assert.NotEmpty(t, envelope.Timestamp)
	assert.Equal(t, "ticker", envelope.Details["field"])
}

func TestPreflight(t *testing.T) {
	rec := doRequest(t, http.MethodOptions, "/options-analytics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestUnknownRoute(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
