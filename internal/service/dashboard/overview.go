package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"habitpulse/internal/consistency"
	"habitpulse/internal/model"
	"habitpulse/pkg/logger"
)

const dateLayout = "2006-01-02"

type FilterView struct {
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
	Category string `json:"category"`
}

// Overview is the all-habits dashboard of one user.
type Overview struct {
	GeneratedAt           time.Time                    `json:"generated_at"`
	Filter                FilterView                   `json:"filter"`
	TotalLogs             int                          `json:"total_logs"`
	ActiveHabits          int                          `json:"active_habits"`
	AverageCompletionRate float64                      `json:"average_completion_rate"`
	Streaks               consistency.StreakResult     `json:"streaks"`
	CompletionRates       []consistency.CompletionRate `json:"completion_rates"`
	GoalAchievement       consistency.GoalReport       `json:"goal_achievement"`
	Ratings               []consistency.RatingAverage  `json:"average_ratings"`
	Weekday               []WeekdayCount               `json:"weekday_distribution"`
	Calendar              []consistency.DayCount       `json:"calendar"`
	Categories            []string                     `json:"categories"`
	Summary               []consistency.HabitSummary   `json:"summary"`
	ExcludedFromGoals     []int                        `json:"excluded_from_goal_report,omitempty"`
}

func filterView(f consistency.Filter) FilterView {
	v := FilterView{Category: f.Category}
	if v.Category == "" {
		v.Category = consistency.AllCategories
	}
	if !f.Start.IsZero() {
		v.Start = f.Start.Format(dateLayout)
	}
	if !f.End.IsZero() {
		v.End = f.End.Format(dateLayout)
	}
	return v
}

// Overview computes the dashboard for userID over the logs matching filter.
// Date bounds and category are applied together.
func (s *Service) Overview(ctx context.Context, userID int, filter consistency.Filter) (Overview, error) {
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return Overview{}, fmt.Errorf("%w: end date before start date", ErrInvalidRequest)
	}

	now := s.now()
	fv := filterView(filter)
	params := fmt.Sprintf("%s|%s|%s|%s", now.Format(dateLayout), fv.Start, fv.End, fv.Category)

	var cached Overview
	version, hit := s.cache.Get(ctx, userID, "overview", params, &cached)
	if hit {
		return cached, nil
	}

	ctx, done := startReport(ctx, "overview")
	defer done()

	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	all, err := s.logs.ListAnnotatedByUser(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	logs := consistency.ApplyFilter(all, filter)
	dates := consistency.LogDates(logs)

	goals, excluded := s.goalReport(ctx, userID, logs)
	report, err := consistency.GoalAchievement(goals)
	if err != nil {
		return Overview{}, err
	}

	summary, active, err := s.summaries(habits, logs, filter, now)
	if err != nil {
		return Overview{}, err
	}

	out := Overview{
		GeneratedAt:           now,
		Filter:                fv,
		TotalLogs:             len(logs),
		ActiveHabits:          active,
		AverageCompletionRate: consistency.PooledCompletionRate(logs, now),
		Streaks:               consistency.StreaksGrouped(logs, now),
		CompletionRates:       consistency.CompletionRates(logs, now),
		GoalAchievement:       report,
		Ratings:               consistency.AverageRatings(logs),
		Weekday:               weekdayCounts(dates),
		Calendar:              consistency.Calendar(dates),
		Categories:            consistency.Categories(all),
		Summary:               summary,
		ExcludedFromGoals:     excluded,
	}

	s.cache.Set(ctx, userID, version, "overview", params, out)
	return out, nil
}

// goalReport drops logs of count or duration habits without a usable goal.
func (s *Service) goalReport(ctx context.Context, userID int, logs []model.AnnotatedLog) ([]model.AnnotatedLog, []int) {
	kept := make([]model.AnnotatedLog, 0, len(logs))
	var excluded []int
	seen := make(map[int]bool)
	for _, l := range logs {
		if !hasInvalidGoal(l.Habit) {
			kept = append(kept, l)
			continue
		}
		if !seen[l.Habit.ID] {
			seen[l.Habit.ID] = true
			excluded = append(excluded, l.Habit.ID)
			logger.WithTrace(ctx, s.logger).Warn("Habit has no positive goal, excluded from goal report",
				zap.Int("user_id", userID),
				zap.Int("habit_id", l.Habit.ID),
				zap.Float64("goal", l.Habit.GoalValue()),
			)
		}
	}
	return kept, excluded
}

// summaries builds the per-habit summary table for the habits matching the
// category filter, including habits without any log in range. It also
// returns how many of those habits are still active.
func (s *Service) summaries(habits []model.Habit, logs []model.AnnotatedLog, filter consistency.Filter, now time.Time) ([]consistency.HabitSummary, int, error) {
	byHabit := make(map[int][]model.ActivityLog)
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l.ActivityLog)
	}

	out := make([]consistency.HabitSummary, 0, len(habits))
	active := 0
	for _, h := range habits {
		if filter.Category != "" && filter.Category != consistency.AllCategories && h.Category != filter.Category {
			continue
		}
		if h.IsActive(now) {
			active++
		}
		sum, err := summarize(h, byHabit[h.ID], now)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sum)
	}
	return out, active, nil
}

// summarize wraps consistency.Summarize, dropping the achievement figure of
// habits whose goal is unusable.
func summarize(h model.Habit, logs []model.ActivityLog, now time.Time) (consistency.HabitSummary, error) {
	sum, err := consistency.Summarize(h, logs, now)
	if err != nil {
		return consistency.HabitSummary{}, err
	}
	if hasInvalidGoal(h) {
		sum.AverageAchievement = nil
	}
	return sum, nil
}
