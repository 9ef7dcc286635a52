package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitpulse_mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitpulse_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpulse_db_slow_query_total",
			Help: "Number of queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitpulse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 分析计算耗时（秒）
	AnalyticsComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habitpulse_analytics_compute_duration_seconds",
			Help:    "Time spent computing a dashboard or habit report",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"report"}, // report: overview, habit, compute, streak
	)

	// 缓存命中统计
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpulse_cache_lookups_total",
			Help: "Dashboard cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss, error
	)

	// 事件处理计数
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpulse_events_processed_total",
			Help: "Consumed events by routing key and outcome",
		},
		[]string{"routing_key", "status"}, // status: success, duplicate, retry, dlq
	)

	// 连续打卡事件发布计数
	StreakEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habitpulse_streak_events_published_total",
			Help: "Streak events published by routing key",
		},
		[]string{"routing_key"},
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录一次慢查询
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
	DBQueryDuration.WithLabelValues("slow", "").Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAnalyticsCompute records how long one report took to build.
func RecordAnalyticsCompute(report string, duration time.Duration) {
	AnalyticsComputeDuration.WithLabelValues(report).Observe(duration.Seconds())
}

// IncrementCacheLookup counts a cache lookup with result hit, miss or error.
func IncrementCacheLookup(result string) {
	CacheLookups.WithLabelValues(result).Inc()
}

// IncrementEventProcessed counts a consumed event.
func IncrementEventProcessed(routingKey, status string) {
	EventsProcessed.WithLabelValues(routingKey, status).Inc()
}

// IncrementStreakPublished counts a published streak event.
func IncrementStreakPublished(routingKey string) {
	StreakEventsPublished.WithLabelValues(routingKey).Inc()
}
