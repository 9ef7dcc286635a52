package consistency

import (
	"sort"
	"time"

	"habitpulse/internal/model"
)

// WeekdayDistribution counts logs per weekday, Monday first.
func WeekdayDistribution(dates []time.Time) [7]int {
	var counts [7]int
	for _, d := range dates {
		// time.Weekday starts at Sunday
		counts[(int(d.Weekday())+6)%7]++
	}
	return counts
}

type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Calendar counts logs per calendar date, oldest first. It feeds the
// heatmap view.
func Calendar(dates []time.Time) []DayCount {
	out := []DayCount{}
	for _, d := range sortedDates(dates) {
		if n := len(out); n > 0 && out[n-1].Date.Equal(d) {
			out[n-1].Count++
			continue
		}
		out = append(out, DayCount{Date: d, Count: 1})
	}
	return out
}

type RatingAverage struct {
	HabitID int     `json:"habit_id"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
}

// AverageRatings is the mean rating per habit, lowest first.
func AverageRatings(logs []model.AnnotatedLog) []RatingAverage {
	groups := groupByHabit(logs)
	out := make([]RatingAverage, 0, len(groups))
	for _, g := range groups {
		out = append(out, RatingAverage{
			HabitID: g.habit.ID,
			Name:    g.habit.Name,
			Rating:  averageRating(g.logs),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating < out[j].Rating })
	return out
}

// LogDates extracts the log dates of an annotated collection.
func LogDates(logs []model.AnnotatedLog) []time.Time {
	out := make([]time.Time, len(logs))
	for i, l := range logs {
		out[i] = l.LogDate
	}
	return out
}
