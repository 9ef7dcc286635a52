package consistency

import (
	"time"

	"habitpulse/internal/model"
)

type StreakResult struct {
	Longest int `json:"longest_streak"`
	Current int `json:"current_streak"`
}

// Streaks computes the longest run of logs satisfying freq's continuity
// rule and the run still open at now.
//
// Daily runs need consecutive calendar days: a second log on the same day
// breaks the run rather than being ignored.
func Streaks(dates []time.Time, freq model.Frequency, now time.Time) StreakResult {
	if len(dates) == 0 {
		return StreakResult{}
	}

	sorted := sortedDates(dates)
	run, longest := 1, 1
	for i := 1; i < len(sorted); i++ {
		if continuesRun(sorted[i-1], sorted[i], freq) {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}

	res := StreakResult{Longest: longest}
	if stillActive(DaysBetween(sorted[len(sorted)-1], now), freq) {
		res.Current = run
	}
	return res
}

func continuesRun(prev, next time.Time, freq model.Frequency) bool {
	gap := DaysBetween(prev, next)
	switch freq {
	case model.Daily:
		return gap == 1
	case model.Weekly:
		return gap <= 7
	case model.Monthly:
		return next.Month() != prev.Month() && gap <= 31
	default:
		return false
	}
}

func stillActive(daysSinceLast int, freq model.Frequency) bool {
	switch freq {
	case model.Daily:
		return daysSinceLast <= 1
	case model.Weekly:
		return daysSinceLast <= 7
	case model.Monthly:
		return daysSinceLast <= 31
	default:
		return false
	}
}

// StreaksGrouped runs Streaks per habit, each with its own frequency, and
// returns the highest longest and highest current streak across habits.
func StreaksGrouped(logs []model.AnnotatedLog, now time.Time) StreakResult {
	var res StreakResult
	for _, g := range groupByHabit(logs) {
		s := Streaks(g.dates(), g.habit.Frequency, now)
		res.Longest = max(res.Longest, s.Longest)
		res.Current = max(res.Current, s.Current)
	}
	return res
}

type habitGroup struct {
	habit model.Habit
	logs  []model.ActivityLog
}

func (g habitGroup) dates() []time.Time {
	out := make([]time.Time, len(g.logs))
	for i, l := range g.logs {
		out[i] = l.LogDate
	}
	return out
}

// groupByHabit partitions logs by habit ID, keeping habits in order of
// first appearance. The first log seen for a habit supplies its metadata.
func groupByHabit(logs []model.AnnotatedLog) []habitGroup {
	index := make(map[int]int)
	var groups []habitGroup
	for _, l := range logs {
		i, ok := index[l.Habit.ID]
		if !ok {
			i = len(groups)
			index[l.Habit.ID] = i
			groups = append(groups, habitGroup{habit: l.Habit})
		}
		groups[i].logs = append(groups[i].logs, l.ActivityLog)
	}
	return groups
}
