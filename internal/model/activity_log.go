package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ActivityValue is the raw activity token of a log: "Yes"/"No" for
// completion habits, a number for count and duration habits.
type ActivityValue string

func (v ActivityValue) IsYes() bool {
	return strings.EqualFold(strings.TrimSpace(string(v)), "yes")
}

// Float parses a count or duration value. Only finite decimal numbers are
// accepted; "NaN", "Inf" and hex floats are rejected.
func (v ActivityValue) Float() (float64, error) {
	s := strings.TrimSpace(string(v))
	if strings.ContainsAny(s, "xX_") {
		return 0, fmt.Errorf("activity %q is not a decimal number", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("activity %q is not a finite number", s)
	}
	return f, nil
}

type ActivityLog struct {
	ID       int           `json:"log_id"`
	HabitID  int           `json:"habit_id"`
	LogDate  time.Time     `json:"log_date"`
	Activity ActivityValue `json:"activity"`
	Rating   int           `json:"rating"`
	Notes    string        `json:"log_notes,omitempty"`
}

// AnnotatedLog is a log joined with the metadata of the habit it belongs to.
type AnnotatedLog struct {
	ActivityLog
	Habit Habit `json:"habit"`
}
