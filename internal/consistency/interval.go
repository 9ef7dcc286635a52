package consistency

import "time"

type Interval struct {
	Date    time.Time `json:"log_date"`
	GapDays int       `json:"interval"`
}

// LogIntervals lists the gap in days before each log, oldest first. The
// earliest log has no predecessor and produces no entry.
func LogIntervals(dates []time.Time) []Interval {
	sorted := sortedDates(dates)
	if len(sorted) < 2 {
		return []Interval{}
	}
	out := make([]Interval, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		out = append(out, Interval{
			Date:    sorted[i],
			GapDays: DaysBetween(sorted[i-1], sorted[i]),
		})
	}
	return out
}

// AverageInterval is the mean gap between consecutive logs, or 0 when
// there are fewer than two logs.
func AverageInterval(dates []time.Time) float64 {
	intervals := LogIntervals(dates)
	if len(intervals) == 0 {
		return 0
	}
	var sum int
	for _, iv := range intervals {
		sum += iv.GapDays
	}
	return float64(sum) / float64(len(intervals))
}
