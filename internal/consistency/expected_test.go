package consistency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habitpulse/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpectedLogs(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		freq  model.Frequency
		now   time.Time
		want  int
	}{
		{"daily same day", date(2025, 1, 1), model.Daily, date(2025, 1, 1), 1},
		{"daily ten days", date(2025, 1, 1), model.Daily, date(2025, 1, 10), 10},
		{"daily ignores time of day", date(2025, 1, 1), model.Daily, time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC), 10},
		{"daily future start saturates", date(2025, 2, 1), model.Daily, date(2025, 1, 1), 1},
		{"weekly first week", date(2025, 1, 1), model.Weekly, date(2025, 1, 7), 1},
		{"weekly second week", date(2025, 1, 1), model.Weekly, date(2025, 1, 8), 2},
		{"weekly third week", date(2025, 1, 1), model.Weekly, date(2025, 1, 15), 3},
		{"weekly future start saturates", date(2025, 3, 1), model.Weekly, date(2025, 1, 1), 1},
		{"monthly across month end", date(2024, 1, 31), model.Monthly, date(2024, 2, 1), 2},
		{"monthly across year", date(2023, 11, 15), model.Monthly, date(2024, 2, 1), 4},
		{"monthly future start saturates", date(2025, 6, 1), model.Monthly, date(2025, 1, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpectedLogs(tt.start, tt.freq, tt.now))
		})
	}
}

func TestExpectedLogsMonotonicInNow(t *testing.T) {
	start := date(2024, 2, 29)
	for _, freq := range []model.Frequency{model.Daily, model.Weekly, model.Monthly} {
		prev := 0
		for i := -40; i < 500; i++ {
			got := ExpectedLogs(start, freq, start.AddDate(0, 0, i))
			assert.GreaterOrEqual(t, got, 1, "%s day %d", freq, i)
			assert.GreaterOrEqual(t, got, prev, "%s day %d", freq, i)
			prev = got
		}
	}
}

func TestExpectedLogsUsesLocalCalendarDate(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 2025-01-02 01:00 in UTC+9 is still 2025-01-01 in UTC.
	now := time.Date(2025, 1, 2, 1, 0, 0, 0, loc)
	assert.Equal(t, 2, ExpectedLogs(date(2025, 1, 1), model.Daily, now))
}
