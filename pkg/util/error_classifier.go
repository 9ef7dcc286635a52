package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"habitpulse/pkg/circuitbreaker"
)

// Error types returned by IsRetryableError.
const (
	ErrTypeJSONDecode     = "json_decode_error"
	ErrTypeNotFound       = "not_found"
	ErrTypeInvalidData    = "invalid_data"
	ErrTypeDBConnection   = "db_connection_error"
	ErrTypeNetworkTimeout = "network_timeout"
	ErrTypeNetwork        = "network_error"
	ErrTypeTimeout        = "timeout"
	ErrTypeCanceled       = "context_canceled"
	ErrTypeBreakerOpen    = "circuit_breaker_open"
	ErrTypeUnknown        = "unknown_error"
)

// ErrInvalidData marks failures caused by the message content itself, such
// as a non-numeric activity on a count habit. They are never retried.
var ErrInvalidData = errors.New("invalid data")

// IsRetryableError determines if an error is retryable
// Returns: (isRetryable, errorType)
func IsRetryableError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	// JSON decode errors - 不可重试（数据格式错误）
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false, ErrTypeJSONDecode
	}

	if errors.Is(err, ErrInvalidData) {
		return false, ErrTypeInvalidData
	}

	// 记录不存在 - 不可重试
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrTypeNotFound
	}

	// Context
	if errors.Is(err, context.DeadlineExceeded) {
		return true, ErrTypeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return false, ErrTypeCanceled
	}

	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		return true, ErrTypeBreakerOpen
	}

	// Postgres 连接类错误（SQLSTATE 08xxx）可重试，其余 SQL 错误不重试
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") {
			return true, ErrTypeDBConnection
		}
		return false, ErrTypeUnknown
	}
	if pgconn.SafeToRetry(err) {
		return true, ErrTypeDBConnection
	}

	// Network errors - 可重试
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, ErrTypeNetworkTimeout
		}
		return true, ErrTypeNetwork
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "connection reset") {
		return true, ErrTypeDBConnection
	}

	// 默认：未知错误，保守处理 - 不重试
	return false, ErrTypeUnknown
}

// ShouldRetry checks if an error should be retried based on retry count
func ShouldRetry(retryCount int64, maxRetries int64, isRetryable bool) bool {
	if !isRetryable {
		return false
	}
	return retryCount <= maxRetries
}
