package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ContextKey represents keys used for context values
type ContextKey string

const (
	// RequestIDKey is the context key for request IDs
	RequestIDKey ContextKey = "request_id"
	// TraceIDKey is the context key for trace IDs
	TraceIDKey ContextKey = "trace_id"
	// SpanIDKey is the context key for span IDs
	SpanIDKey ContextKey = "span_id"
	// StartTimeKey is the context key for request start time
	StartTimeKey ContextKey = "start_time"
)

// RequestInfo contains tracing information for a request
type RequestInfo struct {
	RequestID string    `json:"request_id"`
	TraceID   string    `json:"trace_id"`
	SpanID    string    `json:"span_id"`
	StartTime time.Time `json:"start_time"`
}

// GenerateRequestID generates a unique request ID
func GenerateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID if crypto rand fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("req_%s", hex.EncodeToString(bytes))
}

// WithRequestID stores a request ID on the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithTraceID stores a trace ID on the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithSpanID stores a span ID on the context
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// WithStartTime stores the request start time on the context
func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, StartTimeKey, t)
}

// GetRequestInfo extracts tracing information from a context
func GetRequestInfo(ctx context.Context) RequestInfo {
	info := RequestInfo{}
	if ctx == nil {
		return info
	}

	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		info.RequestID = v
	}
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		info.TraceID = v
	}
	if v, ok := ctx.Value(SpanIDKey).(string); ok {
		info.SpanID = v
	}
	if v, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		info.StartTime = v
	}
	return info
}

// Duration returns how long the request has been running
func Duration(ctx context.Context) time.Duration {
	if v, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return time.Since(v)
	}
	return 0
}
