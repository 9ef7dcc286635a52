package consistency

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"habitpulse/internal/model"
)

// ErrNonNumericActivity is returned when a count or duration log holds a
// value that is not a number.
var ErrNonNumericActivity = errors.New("activity value is not numeric")

type HabitAchievement struct {
	HabitID   int     `json:"habit_id"`
	Name      string  `json:"habit_name"`
	Average   float64 `json:"average_goal_achievement"`
	TotalLogs int     `json:"total_logs"`
}

// GoalReport holds per-habit goal achievement. Applicable is false when
// no count or duration habit was present; Habits is then empty and must
// not be read as zero achievement.
type GoalReport struct {
	Applicable bool               `json:"applicable"`
	Habits     []HabitAchievement `json:"habits"`
}

// LogAchievement is value as a percentage of goal, capped at 100.
func LogAchievement(value, goal float64) float64 {
	return math.Min(value/goal*100, 100)
}

// GoalAchievement averages per-log achievement for every count or duration
// habit in logs. Completion habits are skipped.
func GoalAchievement(logs []model.AnnotatedLog) (GoalReport, error) {
	var report GoalReport
	for _, g := range groupByHabit(logs) {
		if !g.habit.TrackingMode.HasGoal() {
			continue
		}
		avg, err := averageAchievement(g.habit, g.logs)
		if err != nil {
			return GoalReport{}, err
		}
		report.Habits = append(report.Habits, HabitAchievement{
			HabitID:   g.habit.ID,
			Name:      g.habit.Name,
			Average:   round2(avg),
			TotalLogs: len(g.logs),
		})
	}
	if len(report.Habits) == 0 {
		return GoalReport{Applicable: false, Habits: []HabitAchievement{}}, nil
	}

	report.Applicable = true
	sort.SliceStable(report.Habits, func(i, j int) bool {
		a, b := report.Habits[i], report.Habits[j]
		if a.Average != b.Average {
			return a.Average < b.Average
		}
		return a.HabitID < b.HabitID
	})
	return report, nil
}

// AverageAchievement is the single-habit form of GoalAchievement. ok is
// false for completion habits and for an empty log list.
func AverageAchievement(habit model.Habit, logs []model.ActivityLog) (avg float64, ok bool, err error) {
	if !habit.TrackingMode.HasGoal() || len(logs) == 0 {
		return 0, false, nil
	}
	avg, err = averageAchievement(habit, logs)
	if err != nil {
		return 0, false, err
	}
	return round2(avg), true, nil
}

func averageAchievement(habit model.Habit, logs []model.ActivityLog) (float64, error) {
	goal := habit.GoalValue()
	var sum float64
	for _, l := range logs {
		v, err := l.Activity.Float()
		if err != nil {
			return 0, fmt.Errorf("habit %d log %d: %w", habit.ID, l.ID, ErrNonNumericActivity)
		}
		sum += LogAchievement(v, goal)
	}
	return sum / float64(len(logs)), nil
}
