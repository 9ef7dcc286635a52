package consistency

import (
	"time"

	"habitpulse/internal/model"
)

// ExpectedLogs is how many logs a habit started on start should have by
// now. It never returns less than 1, even for a start date in the future.
func ExpectedLogs(start time.Time, freq model.Frequency, now time.Time) int {
	start, now = DateOf(start), DateOf(now)

	var expected int
	switch freq {
	case model.Daily:
		expected = DaysBetween(start, now) + 1
	case model.Weekly:
		expected = floorDiv(DaysBetween(start, now), 7) + 1
	case model.Monthly:
		expected = (now.Year()-start.Year())*12 + int(now.Month()-start.Month()) + 1
	}
	return max(expected, 1)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
