// Package dashboard assembles the analytics views served by the API and the
// streak snapshots published by the worker. It loads data through the
// repositories, runs the consistency engine and caches rendered views.
package dashboard

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"habitpulse/internal/model"
	"habitpulse/pkg/metrics"
	"habitpulse/pkg/otel"
)

// ErrInvalidRequest marks caller input the service cannot compute on.
var ErrInvalidRequest = errors.New("invalid analytics request")

type HabitStore interface {
	ListByUser(ctx context.Context, userID int) ([]model.Habit, error)
	Get(ctx context.Context, userID, habitID int) (model.Habit, error)
}

type LogStore interface {
	ListAnnotatedByUser(ctx context.Context, userID int) ([]model.AnnotatedLog, error)
	ListAnnotatedByHabit(ctx context.Context, userID, habitID int) ([]model.AnnotatedLog, error)
	ListUsersWithLogs(ctx context.Context) ([]int, error)
}

// Cache stores rendered views. Get returns the cache version the lookup ran
// under; Set must be given that version.
type Cache interface {
	Get(ctx context.Context, userID int, view, params string, dest any) (version int64, hit bool)
	Set(ctx context.Context, userID int, version int64, view, params string, value any)
	Invalidate(ctx context.Context, userID int) error
}

// Clock returns the current instant in the timezone whose calendar decides
// what "today" is.
type Clock func() time.Time

// NewClock returns a Clock reading wall time in loc.
func NewClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

type Service struct {
	habits HabitStore
	logs   LogStore
	cache  Cache
	now    Clock
	logger *zap.Logger
}

func NewService(habits HabitStore, logs LogStore, cache Cache, clock Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		habits: habits,
		logs:   logs,
		cache:  cache,
		now:    clock,
		logger: logger,
	}
}

// Invalidate drops every cached view of the user.
func (s *Service) Invalidate(ctx context.Context, userID int) error {
	return s.cache.Invalidate(ctx, userID)
}

// UsersWithLogs lists the users the snapshot job iterates over.
func (s *Service) UsersWithLogs(ctx context.Context) ([]int, error) {
	return s.logs.ListUsersWithLogs(ctx)
}

// startReport opens a span for one report computation. The returned func
// ends the span and records the duration.
func startReport(ctx context.Context, report string) (context.Context, func()) {
	start := time.Now()
	ctx, span := otel.StartSpan(ctx, "dashboard."+report,
		trace.WithAttributes(attribute.String("analytics.report", report)),
	)
	return ctx, func() {
		metrics.RecordAnalyticsCompute(report, time.Since(start))
		span.End()
	}
}

func plainLogs(logs []model.AnnotatedLog) []model.ActivityLog {
	out := make([]model.ActivityLog, len(logs))
	for i, l := range logs {
		out[i] = l.ActivityLog
	}
	return out
}

func logDates(logs []model.ActivityLog) []time.Time {
	out := make([]time.Time, len(logs))
	for i, l := range logs {
		out[i] = l.LogDate
	}
	return out
}

// hasInvalidGoal reports a count or duration habit whose goal cannot be
// used as a divisor.
func hasInvalidGoal(h model.Habit) bool {
	return h.TrackingMode.HasGoal() && h.GoalValue() <= 0
}
