package consistency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogIntervals(t *testing.T) {
	got := LogIntervals([]time.Time{date(2025, 1, 6), date(2025, 1, 1), date(2025, 1, 3)})

	assert.Equal(t, []Interval{
		{Date: date(2025, 1, 3), GapDays: 2},
		{Date: date(2025, 1, 6), GapDays: 3},
	}, got)
}

func TestLogIntervalsNotEnoughData(t *testing.T) {
	assert.Empty(t, LogIntervals(nil))
	assert.Empty(t, LogIntervals([]time.Time{date(2025, 1, 1)}))
}

func TestAverageInterval(t *testing.T) {
	assert.Equal(t, 0.0, AverageInterval(nil))
	assert.Equal(t, 0.0, AverageInterval([]time.Time{date(2025, 1, 1)}))
	assert.Equal(t, 2.5, AverageInterval([]time.Time{date(2025, 1, 1), date(2025, 1, 3), date(2025, 1, 6)}))
	assert.Equal(t, 0.0, AverageInterval([]time.Time{date(2025, 1, 1), date(2025, 1, 1)}))
}
