package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Frequency is the cadence a habit is expected to be performed at.
type Frequency int

const (
	Daily Frequency = iota + 1
	Weekly
	Monthly
)

// ParseFrequency accepts "Daily", "Weekly" or "Monthly" in any case.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return Daily, nil
	case "weekly":
		return Weekly, nil
	case "monthly":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("unknown frequency %q", s)
	}
}

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// StreakUnit is the label shown next to a streak length.
func (f Frequency) StreakUnit() string {
	switch f {
	case Daily:
		return "days"
	case Weekly:
		return "weeks"
	case Monthly:
		return "months"
	default:
		return ""
	}
}

func (f Frequency) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *Frequency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFrequency(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// TrackingMode decides how a log's activity value is read.
type TrackingMode int

const (
	Completion TrackingMode = iota + 1
	Count
	Duration
)

// 数据库里保存的是表单上的完整标签
const (
	completionLabel = "Yes/No (Completed or not)"
	countLabel      = "Count (Number-based)"
	durationLabel   = "Duration (Minutes/hours)"
)

// ParseTrackingMode accepts the stored form labels as well as the short
// names "yes_no"/"completion", "count" and "duration".
func ParseTrackingMode(s string) (TrackingMode, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case completionLabel:
		return Completion, nil
	case countLabel:
		return Count, nil
	case durationLabel:
		return Duration, nil
	}

	switch strings.ToLower(trimmed) {
	case "yes_no", "yes/no", "completion":
		return Completion, nil
	case "count":
		return Count, nil
	case "duration":
		return Duration, nil
	default:
		return 0, fmt.Errorf("unknown tracking mode %q", s)
	}
}

func (m TrackingMode) String() string {
	switch m {
	case Completion:
		return completionLabel
	case Count:
		return countLabel
	case Duration:
		return durationLabel
	default:
		return fmt.Sprintf("TrackingMode(%d)", int(m))
	}
}

// HasGoal reports whether logs carry a number that can be compared to a goal.
func (m TrackingMode) HasGoal() bool {
	switch m {
	case Count, Duration:
		return true
	case Completion:
		return false
	default:
		return false
	}
}

func (m TrackingMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *TrackingMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTrackingMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type Habit struct {
	ID           int          `json:"id"`
	UserID       int          `json:"user_id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Frequency    Frequency    `json:"frequency"`
	TrackingMode TrackingMode `json:"tracking_type"`
	Goal         *float64     `json:"goal,omitempty"`
	GoalUnits    string       `json:"goal_units,omitempty"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      *time.Time   `json:"end_date,omitempty"`
}

// IsActive is false once the habit's end date lies before now's calendar date.
func (h Habit) IsActive(now time.Time) bool {
	if h.EndDate == nil {
		return true
	}
	end := time.Date(h.EndDate.Year(), h.EndDate.Month(), h.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !end.Before(today)
}

// GoalValue returns the goal, or 0 when none is set.
func (h Habit) GoalValue() float64 {
	if h.Goal == nil {
		return 0
	}
	return *h.Goal
}
