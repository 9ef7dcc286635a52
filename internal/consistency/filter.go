package consistency

import (
	"sort"
	"time"

	"habitpulse/internal/model"
)

// AllCategories is the category value that disables category filtering.
const AllCategories = "All categories"

// Filter narrows a log collection before it is analyzed. Zero Start/End
// leave that side of the date range open.
type Filter struct {
	Start    time.Time
	End      time.Time
	Category string
}

func (f Filter) matches(l model.AnnotatedLog) bool {
	d := DateOf(l.LogDate)
	if !f.Start.IsZero() && d.Before(DateOf(f.Start)) {
		return false
	}
	if !f.End.IsZero() && d.After(DateOf(f.End)) {
		return false
	}
	if f.Category != "" && f.Category != AllCategories && l.Habit.Category != f.Category {
		return false
	}
	return true
}

// ApplyFilter returns the logs matching f in their original order.
func ApplyFilter(logs []model.AnnotatedLog, f Filter) []model.AnnotatedLog {
	out := make([]model.AnnotatedLog, 0, len(logs))
	for _, l := range logs {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out
}

// Categories lists the distinct habit categories present in logs, sorted.
func Categories(logs []model.AnnotatedLog) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, l := range logs {
		if _, ok := seen[l.Habit.Category]; ok {
			continue
		}
		seen[l.Habit.Category] = struct{}{}
		out = append(out, l.Habit.Category)
	}
	sort.Strings(out)
	return out
}
