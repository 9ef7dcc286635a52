package dashboard

import (
	"time"

	"habitpulse/internal/consistency"
)

type WeekdayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

var weekdaysMondayFirst = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func weekdayCounts(dates []time.Time) []WeekdayCount {
	counts := consistency.WeekdayDistribution(dates)
	out := make([]WeekdayCount, len(counts))
	for i, n := range counts {
		out[i] = WeekdayCount{Day: weekdaysMondayFirst[i].String(), Count: n}
	}
	return out
}
