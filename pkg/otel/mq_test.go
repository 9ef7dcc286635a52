package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMQHeaderCarrierRoundTrip(t *testing.T) {
	propagator := propagation.TraceContext{}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := map[string]interface{}{"x-other": 7}
	propagator.Inject(ctx, NewMQHeaderCarrier(headers))
	assert.Contains(t, headers, "traceparent")

	extracted := trace.SpanContextFromContext(propagator.Extract(context.Background(), NewMQHeaderCarrier(headers)))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
	assert.True(t, extracted.IsRemote())
}

func TestMQHeaderCarrierGet(t *testing.T) {
	c := NewMQHeaderCarrier(map[string]interface{}{
		"s": "v",
		"b": []byte("bytes"),
		"n": 3,
	})
	assert.Equal(t, "v", c.Get("s"))
	assert.Equal(t, "bytes", c.Get("b"))
	assert.Equal(t, "3", c.Get("n"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"s", "b", "n"}, c.Keys())
}
