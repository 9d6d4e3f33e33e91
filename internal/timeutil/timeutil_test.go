package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseExpiration(s)
	require.NoError(t, err)
	return d
}

func TestParseExpiration(t *testing.T) {
	d, err := ParseExpiration("2024-01-19")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 19, d.Day())
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseExpiration("01/19/2024")
	assert.Error(t, err)

	_, err = ParseExpiration("")
	assert.Error(t, err)
}

func TestYearsToExpiration(t *testing.T) {
	now := mustDate(t, "2024-01-15")

	// Roughly one month out.
	y := YearsToExpiration(mustDate(t, "2024-02-14"), now)
	assert.InDelta(t, 30.0/365.25, y, 1e-9)

	// Same-day and past expirations floor at MinYears.
	assert.Equal(t, MinYears, YearsToExpiration(now, now))
	assert.Equal(t, MinYears, YearsToExpiration(mustDate(t, "2024-01-10"), now))
}

func TestDaysToExpiration(t *testing.T) {
	now := mustDate(t, "2024-01-15")

	assert.Equal(t, 14, DaysToExpiration(mustDate(t, "2024-01-29"), now))
	assert.Equal(t, 0, DaysToExpiration(now, now))
	assert.Equal(t, 0, DaysToExpiration(mustDate(t, "2024-01-10"), now))

	// Intraday base time still measures whole calendar days.
	midday := now.Add(10*time.Hour + 30*time.Minute)
	assert.Equal(t, 14, DaysToExpiration(mustDate(t, "2024-01-29"), midday))
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC)
	assert.Equal(t, "2024-01-15T10:30:00.123456Z", FormatTimestamp(ts))

	// Whole-second instants drop the fraction but keep the Z.
	ts = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-15T10:30:00Z", FormatTimestamp(ts))
}

func TestNearestExpirationsExactHits(t *testing.T) {
	now := mustDate(t, "2024-01-15")
	exps := []string{
		"2024-01-19",
		"2024-01-29", // 14d
		"2024-02-14", // 30d
		"2024-02-26", // 42d
		"2024-03-15", // 60d
		"2024-06-21",
	}

	got, err := NearestExpirations(exps, now)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, Match{Date: "2024-01-29", Days: 14}, got["2w"])
	assert.Equal(t, Match{Date: "2024-02-14", Days: 30}, got["1m"])
	assert.Equal(t, Match{Date: "2024-02-26", Days: 42}, got["6w"])
	assert.Equal(t, Match{Date: "2024-03-15", Days: 60}, got["2m"])
}

func TestNearestExpirationsWeeklyChain(t *testing.T) {
	now := mustDate(t, "2025-07-18")
	exps := []string{"2025-07-25", "2025-08-01", "2025-08-15", "2025-09-05", "2025-09-19"}

	got, err := NearestExpirations(exps, now)
	require.NoError(t, err)

	assert.Equal(t, Match{Date: "2025-08-01", Days: 14}, got["2w"])
	assert.Equal(t, Match{Date: "2025-08-15", Days: 28}, got["1m"])
	assert.Equal(t, Match{Date: "2025-09-05", Days: 49}, got["6w"])
	assert.Equal(t, Match{Date: "2025-09-19", Days: 63}, got["2m"])

	// Idempotent for a fixed input and clock.
	again, err := NearestExpirations(exps, now)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestNearestExpirationsTieBreak(t *testing.T) {
	now := mustDate(t, "2024-01-15")

	// Both dates are 2 days from the 14-day target; the first one
	// listed wins.
	got, err := NearestExpirations([]string{"2024-01-31", "2024-01-27"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", got["2w"].Date)

	got, err = NearestExpirations([]string{"2024-01-27", "2024-01-31"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-27", got["2w"].Date)
}

func TestNearestExpirationsSparseChain(t *testing.T) {
	now := mustDate(t, "2024-01-15")

	// A single available date serves every period.
	got, err := NearestExpirations([]string{"2024-02-16"}, now)
	require.NoError(t, err)
	for _, label := range PeriodLabels() {
		assert.Equal(t, Match{Date: "2024-02-16", Days: 32}, got[label])
	}
}

func TestNearestExpirationsSkipsMalformed(t *testing.T) {
	now := mustDate(t, "2024-01-15")

	got, err := NearestExpirations([]string{"garbage", "2024-01-29"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-29", got["2w"].Date)

	_, err = NearestExpirations(nil, now)
	assert.Error(t, err)

	_, err = NearestExpirations([]string{"not-a-date"}, now)
	assert.Error(t, err)
}

func TestPeriodLabelsMatchTargets(t *testing.T) {
	periods := TargetPeriods()
	labels := PeriodLabels()
	require.Len(t, labels, len(periods))
	for _, label := range labels {
		assert.Contains(t, periods, label)
	}
	assert.Equal(t, 14, periods["2w"])
	assert.Equal(t, 30, periods["1m"])
	assert.Equal(t, 42, periods["6w"])
	assert.Equal(t, 60, periods["2m"])
}
