package consistency

import (
	"fmt"
	"strings"
	"time"

	"habitpulse/internal/model"
)

// HabitSummary is the single-habit dashboard card.
type HabitSummary struct {
	HabitID            int        `json:"habit_id"`
	Name               string     `json:"activity"`
	Target             string     `json:"target"`
	ExpectedLogs       int        `json:"expected_logs"`
	TotalLogs          int        `json:"total_logs"`
	CompletionRate     float64    `json:"completion_rate"`
	AverageRating      float64    `json:"average_rating"`
	FirstLog           *time.Time `json:"first_log_date,omitempty"`
	LastLog            *time.Time `json:"last_log_date,omitempty"`
	LongestStreak      int        `json:"longest_streak"`
	CurrentStreak      int        `json:"current_streak"`
	StreakUnit         string     `json:"streak_unit"`
	AverageInterval    float64    `json:"average_log_interval"`
	AverageAchievement *float64   `json:"goal_achievement_rate,omitempty"`
	Total              float64    `json:"total"`
}

// Summarize builds the summary card for one habit. For completion habits
// only "Yes" logs count towards TotalLogs and the completion rate.
func Summarize(habit model.Habit, logs []model.ActivityLog, now time.Time) (HabitSummary, error) {
	dates := make([]time.Time, len(logs))
	for i, l := range logs {
		dates[i] = l.LogDate
	}
	streak := Streaks(dates, habit.Frequency, now)

	s := HabitSummary{
		HabitID:         habit.ID,
		Name:            habit.Name,
		Target:          targetLabel(habit),
		ExpectedLogs:    ExpectedLogs(habit.StartDate, habit.Frequency, now),
		AverageRating:   averageRating(logs),
		LongestStreak:   streak.Longest,
		CurrentStreak:   streak.Current,
		StreakUnit:      habit.Frequency.StreakUnit(),
		AverageInterval: round2(AverageInterval(dates)),
	}

	if len(dates) > 0 {
		sorted := sortedDates(dates)
		first, last := sorted[0], sorted[len(sorted)-1]
		s.FirstLog, s.LastLog = &first, &last
	}

	if habit.TrackingMode.HasGoal() {
		s.TotalLogs = len(logs)
		for _, l := range logs {
			v, err := l.Activity.Float()
			if err != nil {
				return HabitSummary{}, fmt.Errorf("habit %d log %d: %w", habit.ID, l.ID, ErrNonNumericActivity)
			}
			s.Total += v
		}
		avg, ok, err := AverageAchievement(habit, logs)
		if err != nil {
			return HabitSummary{}, err
		}
		if ok {
			s.AverageAchievement = &avg
		}
	} else {
		for _, l := range logs {
			if l.Activity.IsYes() {
				s.TotalLogs++
			}
		}
		s.Total = float64(s.TotalLogs)
	}

	s.CompletionRate = round2(float64(s.TotalLogs) / float64(s.ExpectedLogs) * 100)
	return s, nil
}

func targetLabel(habit model.Habit) string {
	freq := strings.ToLower(habit.Frequency.String())
	if habit.Goal == nil || *habit.Goal == 0 {
		return freq
	}
	return fmt.Sprintf("%d %s %s", int(*habit.Goal), strings.ToLower(habit.GoalUnits), freq)
}

func averageRating(logs []model.ActivityLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var sum int
	for _, l := range logs {
		sum += l.Rating
	}
	return round2(float64(sum) / float64(len(logs)))
}
