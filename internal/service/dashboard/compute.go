package dashboard

import (
	"context"
	"fmt"
	"time"

	"habitpulse/internal/consistency"
	"habitpulse/internal/model"
)

// ComputeRequest carries a habit and its logs fetched by the caller. Now
// defaults to the service clock.
type ComputeRequest struct {
	Habit model.Habit         `json:"habit"`
	Logs  []model.ActivityLog `json:"logs"`
	Now   *time.Time          `json:"now,omitempty"`
}

type ComputeResult struct {
	Summary         consistency.HabitSummary   `json:"summary"`
	Streak          consistency.StreakResult   `json:"streak"`
	CompletionRate  consistency.CompletionRate `json:"completion_rate"`
	Intervals       []consistency.Interval     `json:"intervals"`
	AverageInterval float64                    `json:"average_interval"`
	Weekday         []WeekdayCount             `json:"weekday_distribution"`
	Calendar        []consistency.DayCount     `json:"calendar"`
}

func (r ComputeRequest) validate() error {
	if r.Habit.Frequency.StreakUnit() == "" {
		return fmt.Errorf("%w: habit frequency is required", ErrInvalidRequest)
	}
	if r.Habit.TrackingMode == 0 {
		return fmt.Errorf("%w: habit tracking_type is required", ErrInvalidRequest)
	}
	if r.Habit.StartDate.IsZero() {
		return fmt.Errorf("%w: habit start_date is required", ErrInvalidRequest)
	}
	for _, l := range r.Logs {
		if l.HabitID != 0 && l.HabitID != r.Habit.ID {
			return fmt.Errorf("%w: log %d belongs to habit %d, not %d", ErrInvalidRequest, l.ID, l.HabitID, r.Habit.ID)
		}
		if l.LogDate.IsZero() {
			return fmt.Errorf("%w: log %d has no log_date", ErrInvalidRequest, l.ID)
		}
	}
	return nil
}

// Compute runs the engine over caller-supplied data without touching the
// repositories or the cache.
func (s *Service) Compute(ctx context.Context, req ComputeRequest) (ComputeResult, error) {
	if err := req.validate(); err != nil {
		return ComputeResult{}, err
	}

	_, done := startReport(ctx, "compute")
	defer done()

	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}

	summary, err := summarize(req.Habit, req.Logs, now)
	if err != nil {
		return ComputeResult{}, err
	}

	dates := logDates(req.Logs)
	return ComputeResult{
		Summary:         summary,
		Streak:          consistency.Streaks(dates, req.Habit.Frequency, now),
		CompletionRate:  consistency.CompletionRateFor(req.Habit, req.Logs, now),
		Intervals:       consistency.LogIntervals(dates),
		AverageInterval: consistency.AverageInterval(dates),
		Weekday:         weekdayCounts(dates),
		Calendar:        consistency.Calendar(dates),
	}, nil
}
