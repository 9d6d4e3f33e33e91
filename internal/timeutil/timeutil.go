// Package timeutil holds the date math used across the options
// pipeline: expiration parsing, time/days-to-expiration, and
// nearest-date selection for the target holding periods.
//
// All dates are treated as UTC. A bare "YYYY-MM-DD" expiration string
// parses as midnight UTC.
package timeutil

import (
	"fmt"
	"time"
)

const expirationLayout = "2006-01-02"

// yearSeconds uses 365.25 days per year to account for leap years.
const yearSeconds = 365.25 * 24 * 3600

// MinYears is the floor applied to time-to-expiration so the solver
// never divides by zero on same-day expirations.
const MinYears = 1.0 / 365.25

// Now returns the current UTC instant.
func Now() time.Time {
	return time.Now().UTC()
}

// ParseExpiration parses a YYYY-MM-DD expiration string as midnight UTC.
func ParseExpiration(s string) (time.Time, error) {
	t, err := time.Parse(expirationLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseExpiration: invalid expiration date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// YearsToExpiration returns the time between now and the expiration in
// years, floored at MinYears.
func YearsToExpiration(expiration, now time.Time) float64 {
	years := expiration.Sub(now).Seconds() / yearSeconds
	if years < MinYears {
		return MinYears
	}
	return years
}

// DaysToExpiration returns the whole-day difference between now and the
// expiration, computed on day-truncated timestamps and clamped at zero
// for past or same-day dates.
func DaysToExpiration(expiration, now time.Time) int {
	expDay := expiration.UTC().Truncate(24 * time.Hour)
	nowDay := now.UTC().Truncate(24 * time.Hour)
	days := int(expDay.Sub(nowDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// FormatTimestamp renders a UTC instant for the API with a trailing Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.999999Z07:00")
}

// PeriodLabels lists the target holding-period labels in selection
// order. The order matters: nearest-date ties resolve to the first
// label processed.
func PeriodLabels() []string {
	return []string{"2w", "1m", "6w", "2m"}
}

// TargetPeriods maps each holding-period label to its nominal length in
// days.
func TargetPeriods() map[string]int {
	return map[string]int{
		"2w": 14,
		"1m": 30,
		"6w": 42,
		"2m": 60,
	}
}

// Match pairs a selected expiration date with its days to expiration
// from the base date.
type Match struct {
	Date string
	Days int
}

// NearestExpirations picks, for each target period, the available
// expiration closest to now + period days. Ties resolve to whichever
// candidate appears first in the input slice. The returned Days is
// measured from now to the chosen expiration, not to the target date.
//
// Returns an error when no expirations are supplied.
func NearestExpirations(allExpirations []string, now time.Time) (map[string]Match, error) {
	if len(allExpirations) == 0 {
		return nil, fmt.Errorf("NearestExpirations: no expiration dates provided")
	}

	type candidate struct {
		raw  string
		date time.Time
	}
	candidates := make([]candidate, 0, len(allExpirations))
	for _, s := range allExpirations {
		d, err := ParseExpiration(s)
		if err != nil {
			continue // skip malformed expiry dates
		}
		candidates = append(candidates, candidate{raw: s, date: d})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("NearestExpirations: no parseable expiration dates provided")
	}

	periods := TargetPeriods()
	out := make(map[string]Match, len(periods))

	for _, label := range PeriodLabels() {
		target := now.AddDate(0, 0, periods[label])

		best := candidates[0]
		bestDiff := absDays(best.date, target)
		for _, c := range candidates[1:] {
			if diff := absDays(c.date, target); diff < bestDiff {
				best = c
				bestDiff = diff
			}
		}

		out[label] = Match{
			Date: best.raw,
			Days: DaysToExpiration(best.date, now),
		}
	}

	return out, nil
}

func absDays(a, b time.Time) int {
	days := DaysToExpiration(a, b)
	if days == 0 {
		days = DaysToExpiration(b, a)
	}
	return days
}
