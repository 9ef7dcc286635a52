package mqhandler

import (
	"context"
	"time"

	"go.uber.org/zap"

	mqcontracts "habitpulse/contracts/mq"
	"habitpulse/internal/service/dashboard"
	"habitpulse/pkg/metrics"
)

type SnapshotService interface {
	UsersWithLogs(ctx context.Context) ([]int, error)
	StreakSnapshot(ctx context.Context, userID int) (dashboard.UserStreaks, error)
}

// StreakSnapshotJob periodically publishes the streaks of every user that
// has logs, so downstream consumers see streaks lapse even when no new log
// arrives.
type StreakSnapshotJob struct {
	svc       SnapshotService
	publisher EventPublisher
	interval  time.Duration
	logger    *zap.Logger
}

func NewStreakSnapshotJob(svc SnapshotService, publisher EventPublisher, interval time.Duration, logger *zap.Logger) *StreakSnapshotJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StreakSnapshotJob{
		svc:       svc,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Run publishes a snapshot round immediately and then once per interval
// until ctx is cancelled.
func (j *StreakSnapshotJob) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if n, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("Streak snapshot round failed", zap.Int("published", n), zap.Error(err))
		} else {
			j.logger.Info("Streak snapshot round finished", zap.Int("published", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce publishes one snapshot per user. A failing user is logged and
// skipped; the error of the user listing aborts the round.
func (j *StreakSnapshotJob) RunOnce(ctx context.Context) (int, error) {
	users, err := j.svc.UsersWithLogs(ctx)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}

		snap, err := j.svc.StreakSnapshot(ctx, userID)
		if err != nil {
			j.logger.Warn("Failed to compute streak snapshot", zap.Int("user_id", userID), zap.Error(err))
			continue
		}
		if err := j.publisher.Publish(ctx, mqcontracts.RoutingUserStreakSnapshot, snapshotPayload(snap)); err != nil {
			j.logger.Warn("Failed to publish streak snapshot", zap.Int("user_id", userID), zap.Error(err))
			continue
		}
		metrics.IncrementStreakPublished(mqcontracts.RoutingUserStreakSnapshot)
		published++
	}
	return published, nil
}

func snapshotPayload(s dashboard.UserStreaks) mqcontracts.UserStreakSnapshotPayload {
	habits := make([]mqcontracts.HabitStreak, 0, len(s.Habits))
	for _, h := range s.Habits {
		habits = append(habits, mqcontracts.HabitStreak{
			HabitID:       h.Habit.ID,
			HabitName:     h.Habit.Name,
			StreakUnit:    h.Habit.Frequency.StreakUnit(),
			LongestStreak: h.Streak.Longest,
			CurrentStreak: h.Streak.Current,
		})
	}
	return mqcontracts.UserStreakSnapshotPayload{
		UserID:        s.UserID,
		LongestStreak: s.Grouped.Longest,
		CurrentStreak: s.Grouped.Current,
		Habits:        habits,
		ComputedAt:    s.ComputedAt,
	}
}
