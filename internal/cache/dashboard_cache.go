package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"habitpulse/pkg/circuitbreaker"
	"habitpulse/pkg/logger"
	"habitpulse/pkg/metrics"
)

// Config 看板缓存配置
type Config struct {
	TTL     time.Duration
	Breaker circuitbreaker.Config
}

// DashboardCache stores rendered dashboard views as JSON. Entries are keyed
// by a per-user version so Invalidate never has to scan keys; stale entries
// expire through their TTL.
type DashboardCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewDashboardCache(rdb *redis.Client, cfg Config, logger *zap.Logger) *DashboardCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardCache{
		rdb:     rdb,
		ttl:     ttl,
		breaker: circuitbreaker.NewCircuitBreaker(cfg.Breaker),
		logger:  logger,
	}
}

func versionKey(userID int) string {
	return fmt.Sprintf("dashboard:%d:version", userID)
}

// Key builds the entry key for a view of a user's dashboard. params is any
// string identifying the query (filter, habit id); it is hashed.
func Key(userID int, version int64, view, params string) string {
	sum := sha1.Sum([]byte(params))
	return fmt.Sprintf("dashboard:%d:v%d:%s:%s", userID, version, view, hex.EncodeToString(sum[:8]))
}

// NoVersion is returned by Get when the user's version could not be read.
// Set ignores writes carrying it.
const NoVersion int64 = -1

// Get loads a cached view into dest. It returns the version the lookup was
// made under; on a miss, callers hand that version back to Set so a view
// computed before an Invalidate is never stored under the newer version.
// Any redis failure, including an open breaker, is reported as a miss with
// NoVersion.
func (c *DashboardCache) Get(ctx context.Context, userID int, view, params string, dest any) (int64, bool) {
	var (
		data    []byte
		version int64
	)
	err := c.breaker.Execute(func() error {
		var err error
		version, err = c.version(ctx, userID)
		if err != nil {
			return err
		}
		data, err = c.rdb.Get(ctx, Key(userID, version, view, params)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		metrics.IncrementCacheLookup("error")
		logger.WithTrace(ctx, c.logger).Warn("Dashboard cache read failed, treating as miss",
			zap.Int("user_id", userID),
			zap.String("view", view),
			zap.Error(err),
		)
		return NoVersion, false
	}
	if data == nil {
		metrics.IncrementCacheLookup("miss")
		return version, false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		metrics.IncrementCacheLookup("error")
		logger.WithTrace(ctx, c.logger).Warn("Discarding undecodable cache entry",
			zap.Int("user_id", userID),
			zap.String("view", view),
			zap.Error(err),
		)
		return version, false
	}
	metrics.IncrementCacheLookup("hit")
	return version, true
}

// Set stores value under version, the one returned by the preceding Get.
// If the user was invalidated in between, the entry lands under an orphaned
// version and is never read. Failures are logged and otherwise ignored.
func (c *DashboardCache) Set(ctx context.Context, userID int, version int64, view, params string, value any) {
	if version < 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("Failed to encode dashboard for cache", zap.String("view", view), zap.Error(err))
		return
	}
	err = c.breaker.Execute(func() error {
		return c.rdb.Set(ctx, Key(userID, version, view, params), data, c.ttl).Err()
	})
	if err != nil {
		logger.WithTrace(ctx, c.logger).Warn("Dashboard cache write failed",
			zap.Int("user_id", userID),
			zap.String("view", view),
			zap.Error(err),
		)
	}
}

// Invalidate bumps the user's version, orphaning every cached view.
func (c *DashboardCache) Invalidate(ctx context.Context, userID int) error {
	err := c.breaker.Execute(func() error {
		pipe := c.rdb.TxPipeline()
		pipe.Incr(ctx, versionKey(userID))
		// version 比所有数据条目活得久
		pipe.Expire(ctx, versionKey(userID), 2*c.ttl)
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("invalidate dashboard cache for user %d: %w", userID, err)
	}
	return nil
}

func (c *DashboardCache) version(ctx context.Context, userID int) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}
