package dashboard

import (
	"context"
	"strconv"
	"time"

	"habitpulse/internal/consistency"
	"habitpulse/internal/model"
)

// HabitDetail is the single-habit dashboard.
type HabitDetail struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Habit       model.Habit              `json:"habit"`
	Active      bool                     `json:"active"`
	Summary     consistency.HabitSummary `json:"summary"`
	Intervals   []consistency.Interval   `json:"intervals"`
	Weekday     []WeekdayCount           `json:"weekday_distribution"`
	Calendar    []consistency.DayCount   `json:"calendar"`
}

type IntervalReport struct {
	HabitID         int                    `json:"habit_id"`
	Intervals       []consistency.Interval `json:"intervals"`
	AverageInterval float64                `json:"average_interval"`
}

// HabitStreak is the streak state of one habit at ComputedAt.
type HabitStreak struct {
	Habit      model.Habit              `json:"habit"`
	Streak     consistency.StreakResult `json:"streak"`
	ComputedAt time.Time                `json:"computed_at"`
}

// UserStreaks holds the grouped streak of a user and the per-habit streaks
// it was derived from.
type UserStreaks struct {
	UserID     int                      `json:"user_id"`
	Grouped    consistency.StreakResult `json:"grouped"`
	Habits     []HabitStreak            `json:"habits"`
	ComputedAt time.Time                `json:"computed_at"`
}

func (s *Service) loadHabit(ctx context.Context, userID, habitID int) (model.Habit, []model.ActivityLog, error) {
	habit, err := s.habits.Get(ctx, userID, habitID)
	if err != nil {
		return model.Habit{}, nil, err
	}
	logs, err := s.logs.ListAnnotatedByHabit(ctx, userID, habitID)
	if err != nil {
		return model.Habit{}, nil, err
	}
	return habit, plainLogs(logs), nil
}

// HabitDetail returns the summary, intervals, weekday distribution and
// calendar of one habit. Unknown habits yield repository.ErrHabitNotFound.
func (s *Service) HabitDetail(ctx context.Context, userID, habitID int) (HabitDetail, error) {
	now := s.now()
	params := strconv.Itoa(habitID) + "|" + now.Format(dateLayout)

	var cached HabitDetail
	version, hit := s.cache.Get(ctx, userID, "habit", params, &cached)
	if hit {
		return cached, nil
	}

	ctx, done := startReport(ctx, "habit")
	defer done()

	habit, logs, err := s.loadHabit(ctx, userID, habitID)
	if err != nil {
		return HabitDetail{}, err
	}

	summary, err := summarize(habit, logs, now)
	if err != nil {
		return HabitDetail{}, err
	}

	dates := logDates(logs)
	out := HabitDetail{
		GeneratedAt: now,
		Habit:       habit,
		Active:      habit.IsActive(now),
		Summary:     summary,
		Intervals:   consistency.LogIntervals(dates),
		Weekday:     weekdayCounts(dates),
		Calendar:    consistency.Calendar(dates),
	}

	s.cache.Set(ctx, userID, version, "habit", params, out)
	return out, nil
}

// HabitIntervals returns the gaps between consecutive logs of one habit.
func (s *Service) HabitIntervals(ctx context.Context, userID, habitID int) (IntervalReport, error) {
	var cached IntervalReport
	params := strconv.Itoa(habitID)
	version, hit := s.cache.Get(ctx, userID, "intervals", params, &cached)
	if hit {
		return cached, nil
	}

	ctx, done := startReport(ctx, "intervals")
	defer done()

	_, logs, err := s.loadHabit(ctx, userID, habitID)
	if err != nil {
		return IntervalReport{}, err
	}

	dates := logDates(logs)
	out := IntervalReport{
		HabitID:         habitID,
		Intervals:       consistency.LogIntervals(dates),
		AverageInterval: consistency.AverageInterval(dates),
	}

	s.cache.Set(ctx, userID, version, "intervals", params, out)
	return out, nil
}

// HabitStreak recomputes the streak of one habit, bypassing the cache.
func (s *Service) HabitStreak(ctx context.Context, userID, habitID int) (HabitStreak, error) {
	ctx, done := startReport(ctx, "streak")
	defer done()

	habit, logs, err := s.loadHabit(ctx, userID, habitID)
	if err != nil {
		return HabitStreak{}, err
	}
	now := s.now()
	return HabitStreak{
		Habit:      habit,
		Streak:     consistency.Streaks(logDates(logs), habit.Frequency, now),
		ComputedAt: now,
	}, nil
}

// StreakSnapshot computes the grouped streak of a user together with the
// streak of every habit that has logs.
func (s *Service) StreakSnapshot(ctx context.Context, userID int) (UserStreaks, error) {
	ctx, done := startReport(ctx, "snapshot")
	defer done()

	logs, err := s.logs.ListAnnotatedByUser(ctx, userID)
	if err != nil {
		return UserStreaks{}, err
	}

	now := s.now()
	out := UserStreaks{
		UserID:     userID,
		Grouped:    consistency.StreaksGrouped(logs, now),
		Habits:     []HabitStreak{},
		ComputedAt: now,
	}

	byHabit := make(map[int][]time.Time)
	var order []model.Habit
	for _, l := range logs {
		if _, ok := byHabit[l.HabitID]; !ok {
			order = append(order, l.Habit)
		}
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l.LogDate)
	}
	for _, h := range order {
		out.Habits = append(out.Habits, HabitStreak{
			Habit:      h,
			Streak:     consistency.Streaks(byHabit[h.ID], h.Frequency, now),
			ComputedAt: now,
		})
	}
	return out, nil
}
