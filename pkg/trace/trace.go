package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

type ctxKey struct{}

// HeaderName 是请求/消息里携带 trace ID 的 header
const HeaderName = "X-Trace-ID"

// fallbackHeader is accepted on inbound requests from proxies that only set a request ID.
const fallbackHeader = "X-Request-ID"

// GenerateTraceID returns a random 32 hex character ID.
func GenerateTraceID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func FromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(ctxKey{}).(string); ok {
		return traceID
	}
	return ""
}

func WithContext(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, traceID)
}

// FromRequest reads the inbound trace ID, generating one when the caller
// did not send any.
func FromRequest(r *http.Request) string {
	if id := r.Header.Get(HeaderName); id != "" {
		return id
	}
	if id := r.Header.Get(fallbackHeader); id != "" {
		return id
	}
	return GenerateTraceID()
}
