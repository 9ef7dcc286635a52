package consistency

import (
	"math"
	"time"

	"habitpulse/internal/model"
)

type CompletionRate struct {
	HabitID     int     `json:"habit_id"`
	Name        string  `json:"habit"`
	Actual      int     `json:"actual_logs"`
	Expected    int     `json:"expected_logs"`
	RatePercent float64 `json:"completion_rate"`
}

// CompletionRateFor compares the number of logs with the number expected
// since the habit started.
func CompletionRateFor(habit model.Habit, logs []model.ActivityLog, now time.Time) CompletionRate {
	expected := ExpectedLogs(habit.StartDate, habit.Frequency, now)
	return CompletionRate{
		HabitID:     habit.ID,
		Name:        habit.Name,
		Actual:      len(logs),
		Expected:    expected,
		RatePercent: round2(float64(len(logs)) / float64(expected) * 100),
	}
}

// CompletionRates returns one rate per distinct habit in logs.
func CompletionRates(logs []model.AnnotatedLog, now time.Time) []CompletionRate {
	groups := groupByHabit(logs)
	out := make([]CompletionRate, 0, len(groups))
	for _, g := range groups {
		out = append(out, CompletionRateFor(g.habit, g.logs, now))
	}
	return out
}

// PooledCompletionRate sums actual and expected logs over all habits before
// dividing, so it is not the mean of the per-habit rates.
func PooledCompletionRate(logs []model.AnnotatedLog, now time.Time) float64 {
	var actual, expected int
	for _, r := range CompletionRates(logs, now) {
		actual += r.Actual
		expected += r.Expected
	}
	if expected == 0 {
		return 0
	}
	return round2(float64(actual) / float64(expected) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
