// Package consistency turns a habit's log history into streaks, completion
// rates, goal achievement and interval statistics.
//
// Every function is pure: callers pass the reference "now" explicitly and
// inputs are never mutated.
package consistency

import (
	"sort"
	"time"
)

const day = 24 * time.Hour

// DateOf drops the time of day from t. The calendar date is taken in t's
// own location and re-anchored at UTC midnight so day arithmetic is exact.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / day)
}

// sortedDates returns a normalized, ascending copy of dates.
func sortedDates(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = DateOf(d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
