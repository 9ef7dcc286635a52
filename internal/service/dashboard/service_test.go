package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitpulse/internal/consistency"
	"habitpulse/internal/model"
	"habitpulse/internal/repository"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func goal(v float64) *float64 { return &v }

var (
	runHabit = model.Habit{
		ID: 1, UserID: 7, Name: "Run", Category: "Health",
		Frequency: model.Daily, TrackingMode: model.Completion, StartDate: day(1),
	}
	readHabit = model.Habit{
		ID: 2, UserID: 7, Name: "Read", Category: "Learning",
		Frequency: model.Daily, TrackingMode: model.Count, Goal: goal(10), GoalUnits: "Pages", StartDate: day(6),
	}
	meditateHabit = model.Habit{
		ID: 3, UserID: 7, Name: "Meditate", Category: "Health",
		Frequency: model.Weekly, TrackingMode: model.Duration, Goal: goal(0), StartDate: day(1),
	}
)

func logOf(id int, h model.Habit, d int, activity string) model.AnnotatedLog {
	return model.AnnotatedLog{
		ActivityLog: model.ActivityLog{ID: id, HabitID: h.ID, LogDate: day(d), Activity: model.ActivityValue(activity), Rating: 3},
		Habit:       h,
	}
}

func fixtureLogs() []model.AnnotatedLog {
	return []model.AnnotatedLog{
		logOf(10, meditateHabit, 3, "10"),
		logOf(11, runHabit, 8, "Yes"),
		logOf(12, runHabit, 9, "Yes"),
		logOf(13, readHabit, 9, "5"),
		logOf(14, runHabit, 10, "Yes"),
		logOf(15, readHabit, 10, "20"),
	}
}

type fakeStore struct {
	habits []model.Habit
	logs   []model.AnnotatedLog
	calls  int
	// onListLogs runs inside ListAnnotatedByUser, after the data was read.
	onListLogs func()
}

func (f *fakeStore) ListByUser(_ context.Context, userID int) ([]model.Habit, error) {
	f.calls++
	var out []model.Habit
	for _, h := range f.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, userID, habitID int) (model.Habit, error) {
	f.calls++
	for _, h := range f.habits {
		if h.ID == habitID && h.UserID == userID {
			return h, nil
		}
	}
	return model.Habit{}, repository.ErrHabitNotFound
}

func (f *fakeStore) ListAnnotatedByUser(_ context.Context, userID int) ([]model.AnnotatedLog, error) {
	f.calls++
	var out []model.AnnotatedLog
	for _, l := range f.logs {
		if l.Habit.UserID == userID {
			out = append(out, l)
		}
	}
	if f.onListLogs != nil {
		f.onListLogs()
	}
	return out, nil
}

func (f *fakeStore) ListAnnotatedByHabit(_ context.Context, userID, habitID int) ([]model.AnnotatedLog, error) {
	f.calls++
	var out []model.AnnotatedLog
	for _, l := range f.logs {
		if l.Habit.UserID == userID && l.HabitID == habitID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) ListUsersWithLogs(context.Context) ([]int, error) {
	f.calls++
	return []int{7}, nil
}

// memoryCache mirrors the versioned redis cache: Invalidate bumps the
// user's version and entries are keyed by the version given to Set.
type memoryCache struct {
	versions map[int]int64
	entries  map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{versions: make(map[int]int64), entries: make(map[string][]byte)}
}

func (c *memoryCache) key(userID int, version int64, view, params string) string {
	return fmt.Sprintf("%d|v%d|%s|%s", userID, version, view, params)
}

func (c *memoryCache) Get(_ context.Context, userID int, view, params string, dest any) (int64, bool) {
	version := c.versions[userID]
	data, ok := c.entries[c.key(userID, version, view, params)]
	if !ok {
		return version, false
	}
	return version, json.Unmarshal(data, dest) == nil
}

func (c *memoryCache) Set(_ context.Context, userID int, version int64, view, params string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	c.entries[c.key(userID, version, view, params)] = data
}

func (c *memoryCache) Invalidate(_ context.Context, userID int) error {
	c.versions[userID]++
	return nil
}

func newTestService() (*Service, *fakeStore, *memoryCache) {
	store := &fakeStore{
		habits: []model.Habit{runHabit, readHabit, meditateHabit},
		logs:   fixtureLogs(),
	}
	cache := newMemoryCache()
	clock := func() time.Time { return time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC) }
	return NewService(store, store, cache, clock, zap.NewNop()), store, cache
}

func TestOverview(t *testing.T) {
	svc, _, _ := newTestService()

	ov, err := svc.Overview(context.Background(), 7, consistency.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 6, ov.TotalLogs)
	assert.Equal(t, 3, ov.ActiveHabits)
	assert.Equal(t, 35.29, ov.AverageCompletionRate)
	assert.Equal(t, consistency.StreakResult{Longest: 3, Current: 3}, ov.Streaks)
	assert.Equal(t, consistency.AllCategories, ov.Filter.Category)
	assert.Equal(t, []string{"Health", "Learning"}, ov.Categories)

	require.True(t, ov.GoalAchievement.Applicable)
	require.Len(t, ov.GoalAchievement.Habits, 1)
	assert.Equal(t, 2, ov.GoalAchievement.Habits[0].HabitID)
	assert.Equal(t, 75.0, ov.GoalAchievement.Habits[0].Average)
	assert.Equal(t, []int{3}, ov.ExcludedFromGoals)

	require.Len(t, ov.Summary, 3)
	assert.Equal(t, 30.0, ov.Summary[0].CompletionRate)
	assert.Nil(t, ov.Summary[2].AverageAchievement)

	assert.Equal(t, []WeekdayCount{
		{"Monday", 0}, {"Tuesday", 0}, {"Wednesday", 1}, {"Thursday", 2},
		{"Friday", 3}, {"Saturday", 0}, {"Sunday", 0},
	}, ov.Weekday)

	var calendarTotal int
	for _, d := range ov.Calendar {
		calendarTotal += d.Count
	}
	assert.Equal(t, ov.TotalLogs, calendarTotal)
}

func TestOverviewFilters(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	health, err := svc.Overview(ctx, 7, consistency.Filter{Category: "Health"})
	require.NoError(t, err)
	assert.Equal(t, 4, health.TotalLogs)
	assert.Equal(t, 2, health.ActiveHabits)
	assert.Len(t, health.Summary, 2)
	assert.False(t, health.GoalAchievement.Applicable)
	assert.Empty(t, health.GoalAchievement.Habits)
	assert.Equal(t, []string{"Health", "Learning"}, health.Categories)

	recent, err := svc.Overview(ctx, 7, consistency.Filter{Start: day(9)})
	require.NoError(t, err)
	assert.Equal(t, 4, recent.TotalLogs)
	assert.Equal(t, "2025-01-09", recent.Filter.Start)

	_, err = svc.Overview(ctx, 7, consistency.Filter{Start: day(9), End: day(2)})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestOverviewEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	ov, err := svc.Overview(context.Background(), 99, consistency.Filter{})
	require.NoError(t, err)
	assert.Zero(t, ov.TotalLogs)
	assert.Zero(t, ov.AverageCompletionRate)
	assert.Equal(t, consistency.StreakResult{}, ov.Streaks)
	assert.False(t, ov.GoalAchievement.Applicable)
}

func TestOverviewNonNumericActivity(t *testing.T) {
	svc, store, _ := newTestService()
	store.logs = append(store.logs, logOf(16, readHabit, 11, "lots"))

	_, err := svc.Overview(context.Background(), 7, consistency.Filter{})
	assert.ErrorIs(t, err, consistency.ErrNonNumericActivity)
}

func TestOverviewIsCachedUntilInvalidated(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Overview(ctx, 7, consistency.Filter{})
	require.NoError(t, err)
	calls := store.calls

	second, err := svc.Overview(ctx, 7, consistency.Filter{})
	require.NoError(t, err)
	assert.Equal(t, calls, store.calls)
	assert.Equal(t, first.TotalLogs, second.TotalLogs)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))

	require.NoError(t, svc.Invalidate(ctx, 7))
	_, err = svc.Overview(ctx, 7, consistency.Filter{})
	require.NoError(t, err)
	assert.Greater(t, store.calls, calls)
}

// A log arriving while the overview is being computed invalidates the user;
// the stale result must not be served afterwards.
func TestOverviewComputedBeforeInvalidateIsNotServed(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()

	store.onListLogs = func() {
		store.logs = append(store.logs, logOf(16, runHabit, 7, "Yes"))
		require.NoError(t, cache.Invalidate(ctx, 7))
		store.onListLogs = nil
	}

	stale, err := svc.Overview(ctx, 7, consistency.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 6, stale.TotalLogs)

	fresh, err := svc.Overview(ctx, 7, consistency.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 7, fresh.TotalLogs)
}

func TestHabitDetail(t *testing.T) {
	svc, _, _ := newTestService()

	detail, err := svc.HabitDetail(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "Run", detail.Habit.Name)
	assert.True(t, detail.Active)
	assert.Equal(t, 3, detail.Summary.TotalLogs)
	assert.Equal(t, 10, detail.Summary.ExpectedLogs)
	assert.Equal(t, 30.0, detail.Summary.CompletionRate)
	assert.Equal(t, "days", detail.Summary.StreakUnit)
	assert.Len(t, detail.Intervals, 2)
	assert.Len(t, detail.Calendar, 3)
}

func TestHabitDetailNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.HabitDetail(context.Background(), 7, 42)
	assert.ErrorIs(t, err, repository.ErrHabitNotFound)

	_, err = svc.HabitIntervals(context.Background(), 8, 1)
	assert.ErrorIs(t, err, repository.ErrHabitNotFound)
}

func TestHabitIntervals(t *testing.T) {
	svc, _, _ := newTestService()

	report, err := svc.HabitIntervals(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.HabitID)
	assert.Equal(t, 1.0, report.AverageInterval)
	require.Len(t, report.Intervals, 2)
	assert.Equal(t, 1, report.Intervals[0].GapDays)
}

func TestDue(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	due, err := svc.Due(ctx, 7)
	require.NoError(t, err)
	// run and read were logged on the 10th; meditate last on the 3rd, before
	// the week of Monday the 6th.
	assert.Empty(t, due.Daily)
	require.Len(t, due.Weekly, 1)
	assert.Equal(t, 3, due.Weekly[0].HabitID)
	assert.Equal(t, day(6), due.Weekly[0].PeriodStart)
	assert.Empty(t, due.Monthly)

	calls := store.calls
	_, err = svc.Due(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, calls, store.calls)
}

func TestHabitStreak(t *testing.T) {
	svc, _, _ := newTestService()

	s, err := svc.HabitStreak(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, "Read", s.Habit.Name)
	assert.Equal(t, consistency.StreakResult{Longest: 2, Current: 2}, s.Streak)
}

func TestStreakSnapshot(t *testing.T) {
	svc, _, _ := newTestService()

	snap, err := svc.StreakSnapshot(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, consistency.StreakResult{Longest: 3, Current: 3}, snap.Grouped)
	require.Len(t, snap.Habits, 3)
	assert.Equal(t, "Meditate", snap.Habits[0].Habit.Name)
	assert.Equal(t, consistency.StreakResult{Longest: 1, Current: 1}, snap.Habits[0].Streak)
	assert.Equal(t, "Run", snap.Habits[1].Habit.Name)
}

func TestCompute(t *testing.T) {
	svc, _, _ := newTestService()
	now := day(10)

	res, err := svc.Compute(context.Background(), ComputeRequest{
		Habit: readHabit,
		Logs: []model.ActivityLog{
			{ID: 1, HabitID: 2, LogDate: day(9), Activity: "5"},
			{ID: 2, LogDate: day(10), Activity: "20"},
		},
		Now: &now,
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.CompletionRate.RatePercent)
	require.NotNil(t, res.Summary.AverageAchievement)
	assert.Equal(t, 75.0, *res.Summary.AverageAchievement)
	assert.Equal(t, "10 pages daily", res.Summary.Target)
	assert.Equal(t, consistency.StreakResult{Longest: 2, Current: 2}, res.Streak)
}

func TestComputeValidation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name string
		req  ComputeRequest
	}{
		{"missing frequency", ComputeRequest{Habit: model.Habit{TrackingMode: model.Count, StartDate: day(1)}}},
		{"missing tracking mode", ComputeRequest{Habit: model.Habit{Frequency: model.Daily, StartDate: day(1)}}},
		{"missing start date", ComputeRequest{Habit: model.Habit{Frequency: model.Daily, TrackingMode: model.Count}}},
		{"foreign log", ComputeRequest{Habit: readHabit, Logs: []model.ActivityLog{{ID: 1, HabitID: 9, LogDate: day(2)}}}},
		{"undated log", ComputeRequest{Habit: readHabit, Logs: []model.ActivityLog{{ID: 1, Activity: "3"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Compute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}
