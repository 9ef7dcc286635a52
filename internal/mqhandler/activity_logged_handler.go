package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "habitpulse/contracts/mq"
	"habitpulse/internal/repository"
	"habitpulse/internal/service/dashboard"
	"habitpulse/pkg/logger"
	"habitpulse/pkg/metrics"
	"habitpulse/pkg/util"
)

const activityLoggedHandlerName = "activity_logged"

type StreakService interface {
	Invalidate(ctx context.Context, userID int) error
	HabitStreak(ctx context.Context, userID, habitID int) (dashboard.HabitStreak, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	PublishToDLQ(ctx context.Context, routingKey string, payload []byte, originalError, failedAt string) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler string, eventID int) bool
	Release(ctx context.Context, handler string, eventID int)
}

type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

type ActivityLoggedHandler struct {
	svc          StreakService
	publisher    EventPublisher
	deduper      Deduper
	retryCounter RetryCounter
	maxRetries   int64
	logger       *zap.Logger
}

func NewActivityLoggedHandler(
	svc StreakService,
	publisher EventPublisher,
	deduper Deduper,
	retryCounter RetryCounter,
	maxRetries int64,
	logger *zap.Logger,
) *ActivityLoggedHandler {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &ActivityLoggedHandler{
		svc:          svc,
		publisher:    publisher,
		deduper:      deduper,
		retryCounter: retryCounter,
		maxRetries:   maxRetries,
		logger:       logger,
	}
}

// Handle processes one activity.logged event: it drops the user's cached
// dashboards, recomputes the habit's streak and publishes it.
// It returns an error only when the message should be requeued.
func (h *ActivityLoggedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	log := logger.WithTrace(ctx, h.logger)

	var p mqcontracts.ActivityLoggedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Error("Failed to unmarshal activity logged payload (non-retryable, sending to DLQ)",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return h.deadLetter(ctx, raw, util.ErrTypeJSONDecode, err)
	}
	if p.LogID <= 0 || p.UserID <= 0 || p.HabitID <= 0 {
		err := fmt.Errorf("%w: log_id, user_id and habit_id are required", util.ErrInvalidData)
		log.Error("Invalid activity logged payload", zap.Error(err), zap.String("raw_payload", string(raw)))
		return h.deadLetter(ctx, raw, util.ErrTypeInvalidData, err)
	}

	log = log.With(
		zap.Int("log_id", p.LogID),
		zap.Int("user_id", p.UserID),
		zap.Int("habit_id", p.HabitID),
	)

	// Redis 去重：同一条日志只处理一次
	if !h.deduper.AcquireOnce(ctx, activityLoggedHandlerName, p.LogID) {
		metrics.IncrementEventProcessed(mqcontracts.RoutingActivityLogged, "duplicate")
		return nil
	}

	err := h.process(ctx, p)
	retryKey := util.FormatRetryKey(activityLoggedHandlerName, p.LogID)
	if err == nil {
		if err := h.retryCounter.Reset(ctx, retryKey); err != nil {
			log.Warn("Failed to reset retry count", zap.Error(err))
		}
		metrics.IncrementEventProcessed(mqcontracts.RoutingActivityLogged, "success")
		log.Info("Activity logged event processed")
		return nil
	}

	isRetryable, errType := util.IsRetryableError(err)
	retryCount, cerr := h.retryCounter.IncrementAndGet(ctx, retryKey)
	if cerr != nil {
		// Redis 错误不影响处理，按第一次处理
		log.Warn("Failed to get retry count, continuing anyway", zap.Error(cerr))
		retryCount = 1
	}

	log.Error("Failed to process activity logged event",
		zap.String("error_type", errType),
		zap.Bool("retryable", isRetryable),
		zap.Int64("retry_count", retryCount),
		zap.Int64("max_retries", h.maxRetries),
		zap.Error(err),
	)

	if util.ShouldRetry(retryCount, h.maxRetries, isRetryable) {
		// 释放去重锁，让重新投递的消息可以再次处理
		h.deduper.Release(ctx, activityLoggedHandlerName, p.LogID)
		metrics.IncrementEventProcessed(mqcontracts.RoutingActivityLogged, "retry")
		return err
	}

	if dlqErr := h.deadLetter(ctx, raw, errType, err); dlqErr != nil {
		// 消息会被重新投递：释放去重锁，保留重试计数，下次直接进入 DLQ
		h.deduper.Release(ctx, activityLoggedHandlerName, p.LogID)
		return dlqErr
	}
	if rerr := h.retryCounter.Reset(ctx, retryKey); rerr != nil {
		log.Warn("Failed to reset retry count", zap.Error(rerr))
	}
	return nil
}

func (h *ActivityLoggedHandler) process(ctx context.Context, p mqcontracts.ActivityLoggedPayload) error {
	if err := h.svc.Invalidate(ctx, p.UserID); err != nil {
		// 缓存失效失败只记录，旧缓存会随 TTL 过期
		logger.WithTrace(ctx, h.logger).Warn("Failed to invalidate dashboard cache",
			zap.Int("user_id", p.UserID),
			zap.Error(err),
		)
	}

	streak, err := h.svc.HabitStreak(ctx, p.UserID, p.HabitID)
	if errors.Is(err, repository.ErrHabitNotFound) {
		return fmt.Errorf("%w: %w", util.ErrInvalidData, err)
	}
	if err != nil {
		return err
	}

	payload := mqcontracts.HabitStreakUpdatedPayload{
		UserID:        p.UserID,
		HabitID:       streak.Habit.ID,
		HabitName:     streak.Habit.Name,
		Frequency:     streak.Habit.Frequency.String(),
		StreakUnit:    streak.Habit.Frequency.StreakUnit(),
		LongestStreak: streak.Streak.Longest,
		CurrentStreak: streak.Streak.Current,
		ComputedAt:    streak.ComputedAt,
		TriggerLogID:  p.LogID,
	}
	if err := h.publisher.Publish(ctx, mqcontracts.RoutingHabitStreakUpdated, payload); err != nil {
		return err
	}
	metrics.IncrementStreakPublished(mqcontracts.RoutingHabitStreakUpdated)
	return nil
}

// deadLetter moves the message to the DLQ. A failed DLQ publish is returned
// so the message is requeued; callers past the dedupe step must release the
// dedupe key first.
func (h *ActivityLoggedHandler) deadLetter(ctx context.Context, raw []byte, errType string, cause error) error {
	metrics.IncrementEventProcessed(mqcontracts.RoutingActivityLogged, "dlq")
	if err := h.publisher.PublishToDLQ(ctx, mqcontracts.RoutingActivityLogged, raw, errType+": "+cause.Error(), "analytics-worker"); err != nil {
		logger.WithTrace(ctx, h.logger).Error("Failed to publish to DLQ", zap.Error(err))
		return fmt.Errorf("publish to dlq: %w", err)
	}
	return nil
}
