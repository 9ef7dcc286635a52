package consistency

import (
	"time"

	"habitpulse/internal/model"
)

// DueHabit is a habit with no log yet in its current period.
type DueHabit struct {
	HabitID     int             `json:"habit_id"`
	Name        string          `json:"habit_name"`
	Frequency   model.Frequency `json:"frequency"`
	PeriodStart time.Time       `json:"period_start"`
}

// DueList groups the habits still to be logged by frequency.
type DueList struct {
	Daily   []DueHabit `json:"daily"`
	Weekly  []DueHabit `json:"weekly"`
	Monthly []DueHabit `json:"monthly"`
}

// Empty reports whether nothing is due.
func (d DueList) Empty() bool {
	return len(d.Daily) == 0 && len(d.Weekly) == 0 && len(d.Monthly) == 0
}

// PeriodStart is the first day of the period containing now: today for
// daily habits, the ISO week's Monday for weekly and the 1st for monthly.
func PeriodStart(f model.Frequency, now time.Time) time.Time {
	today := DateOf(now)
	switch f {
	case model.Weekly:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case model.Monthly:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return today
	}
}

// Due lists the habits with no log between the start of their current
// period and today. Habits that ended before today or start after it are
// not expected and never listed. Habits keep their input order.
func Due(habits []model.Habit, logs []model.ActivityLog, now time.Time) DueList {
	today := DateOf(now)

	logged := make(map[int][]time.Time)
	for _, l := range logs {
		logged[l.HabitID] = append(logged[l.HabitID], DateOf(l.LogDate))
	}

	out := DueList{Daily: []DueHabit{}, Weekly: []DueHabit{}, Monthly: []DueHabit{}}
	for _, h := range habits {
		if !h.IsActive(now) || DateOf(h.StartDate).After(today) {
			continue
		}
		start := PeriodStart(h.Frequency, now)
		if loggedWithin(logged[h.ID], start, today) {
			continue
		}

		item := DueHabit{HabitID: h.ID, Name: h.Name, Frequency: h.Frequency, PeriodStart: start}
		switch h.Frequency {
		case model.Daily:
			out.Daily = append(out.Daily, item)
		case model.Weekly:
			out.Weekly = append(out.Weekly, item)
		case model.Monthly:
			out.Monthly = append(out.Monthly, item)
		}
	}
	return out
}

func loggedWithin(dates []time.Time, from, to time.Time) bool {
	for _, d := range dates {
		if !d.Before(from) && !d.After(to) {
			return true
		}
	}
	return false
}
