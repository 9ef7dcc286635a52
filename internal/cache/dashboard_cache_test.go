package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"habitpulse/pkg/circuitbreaker"
)

func TestKey(t *testing.T) {
	k1 := Key(7, 3, "overview", "start=2025-01-01")
	k2 := Key(7, 3, "overview", "start=2025-02-01")
	k3 := Key(7, 4, "overview", "start=2025-01-01")

	assert.Regexp(t, `^dashboard:7:v3:overview:[0-9a-f]{16}$`, k1)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Equal(t, k1, Key(7, 3, "overview", "start=2025-01-01"))
}

// An unreachable redis must degrade to misses, and after enough failures
// the breaker stops calling redis at all.
func TestUnavailableRedisDegradesToMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer rdb.Close()

	c := NewDashboardCache(rdb, Config{
		TTL:     time.Minute,
		Breaker: circuitbreaker.Config{FailureThreshold: 2, Timeout: time.Hour},
	}, zap.NewNop())

	ctx := context.Background()
	var out map[string]int
	version, hit := c.Get(ctx, 1, "overview", "", &out)
	assert.False(t, hit)
	assert.Equal(t, NoVersion, version)
	c.Set(ctx, 1, 0, "overview", "", map[string]int{"a": 1})
	assert.Equal(t, circuitbreaker.StateOpen, c.breaker.GetState())

	err := c.Invalidate(ctx, 1)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitBreakerOpen)
	_, hit = c.Get(ctx, 1, "overview", "", &out)
	assert.False(t, hit)
}

// A miss without a known version must not write: the view may predate an
// invalidation the cache could not observe.
func TestSetWithoutVersionSkipsRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer rdb.Close()

	c := NewDashboardCache(rdb, Config{
		TTL:     time.Minute,
		Breaker: circuitbreaker.Config{FailureThreshold: 1, Timeout: time.Hour},
	}, zap.NewNop())

	c.Set(context.Background(), 1, NoVersion, "overview", "", map[string]int{"a": 1})
	assert.Equal(t, circuitbreaker.StateClosed, c.breaker.GetState())
}
