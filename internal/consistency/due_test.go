package consistency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habitpulse/internal/model"
)

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		name string
		freq model.Frequency
		now  time.Time
		want time.Time
	}{
		{"daily", model.Daily, time.Date(2025, 3, 5, 22, 0, 0, 0, time.UTC), date(2025, 3, 5)},
		{"weekly on monday", model.Weekly, date(2025, 3, 3), date(2025, 3, 3)},
		{"weekly on sunday", model.Weekly, date(2025, 3, 9), date(2025, 3, 3)},
		{"weekly across month boundary", model.Weekly, date(2025, 3, 1), date(2025, 2, 24)},
		{"weekly across year boundary", model.Weekly, date(2025, 1, 1), date(2024, 12, 30)},
		{"monthly", model.Monthly, date(2025, 3, 31), date(2025, 3, 1)},
		{"monthly on the first", model.Monthly, date(2025, 3, 1), date(2025, 3, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodStart(tt.freq, tt.now))
		})
	}
}

func TestDue(t *testing.T) {
	daily := model.Habit{ID: 1, Name: "Run", Frequency: model.Daily, StartDate: date(2025, 1, 1)}
	weekly := model.Habit{ID: 2, Name: "Swim", Frequency: model.Weekly, StartDate: date(2025, 1, 1)}
	monthly := model.Habit{ID: 3, Name: "Budget", Frequency: model.Monthly, StartDate: date(2025, 1, 1)}
	habits := []model.Habit{daily, weekly, monthly}

	logAt := func(habitID int, d time.Time) model.ActivityLog {
		return model.ActivityLog{HabitID: habitID, LogDate: d, Activity: "Yes"}
	}

	tests := []struct {
		name        string
		logs        []model.ActivityLog
		now         time.Time
		wantDaily   []int
		wantWeekly  []int
		wantMonthly []int
	}{
		{
			name:        "nothing logged",
			now:         date(2025, 3, 5),
			wantDaily:   []int{1},
			wantWeekly:  []int{2},
			wantMonthly: []int{3},
		},
		{
			name: "all logged in their periods",
			logs: []model.ActivityLog{
				logAt(1, time.Date(2025, 3, 5, 7, 0, 0, 0, time.UTC)),
				logAt(2, date(2025, 3, 3)),
				logAt(3, date(2025, 3, 1)),
			},
			now: date(2025, 3, 5),
		},
		{
			name: "yesterday, last week and last month do not count",
			logs: []model.ActivityLog{
				logAt(1, date(2025, 3, 4)),
				logAt(2, date(2025, 3, 2)),
				logAt(3, date(2025, 2, 28)),
			},
			now:         date(2025, 3, 5),
			wantDaily:   []int{1},
			wantWeekly:  []int{2},
			wantMonthly: []int{3},
		},
		{
			name: "week started in the previous month",
			logs: []model.ActivityLog{
				logAt(2, date(2025, 2, 24)),
				logAt(3, date(2025, 2, 24)),
			},
			now:         date(2025, 3, 1),
			wantDaily:   []int{1},
			wantMonthly: []int{3},
		},
		{
			name: "future logs do not satisfy the period",
			logs: []model.ActivityLog{
				logAt(1, date(2025, 3, 6)),
				logAt(3, date(2025, 3, 20)),
			},
			now:         date(2025, 3, 5),
			wantDaily:   []int{1},
			wantWeekly:  []int{2},
			wantMonthly: []int{3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Due(habits, tt.logs, tt.now)
			assert.Equal(t, orEmpty(tt.wantDaily), dueIDs(got.Daily))
			assert.Equal(t, orEmpty(tt.wantWeekly), dueIDs(got.Weekly))
			assert.Equal(t, orEmpty(tt.wantMonthly), dueIDs(got.Monthly))
		})
	}
}

func TestDueSkipsInactiveHabits(t *testing.T) {
	ended := date(2025, 3, 4)
	habits := []model.Habit{
		{ID: 1, Frequency: model.Daily, StartDate: date(2025, 1, 1), EndDate: &ended},
		{ID: 2, Frequency: model.Daily, StartDate: date(2025, 3, 6)},
		{ID: 3, Frequency: model.Daily, StartDate: date(2025, 3, 5)},
	}

	got := Due(habits, nil, time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, []int{3}, dueIDs(got.Daily))
	assert.Equal(t, date(2025, 3, 5), got.Daily[0].PeriodStart)
	assert.False(t, got.Empty())
	assert.True(t, Due(nil, nil, date(2025, 3, 5)).Empty())
}

func dueIDs(items []DueHabit) []int {
	ids := []int{}
	for _, d := range items {
		ids = append(ids, d.HabitID)
	}
	return ids
}

func orEmpty(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
