package logging

import (
	"context"
	"log/slog"
)

type (
	loggerKey    struct{}
	requestIDKey struct{}
	spanKey      struct{}
)

// spanIDs identifies the active span and the trace it belongs to.
type spanIDs struct {
	traceID string
	spanID  string
}

// WithLogger stores logger on ctx. A nil logger leaves ctx unchanged.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRequestID stores the id assigned to the current HTTP request. Spans
// started under it share it as their trace id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// TraceID returns the trace of the active span, falling back to the request id.
func TraceID(ctx context.Context) string {
	if ids, ok := ctx.Value(spanKey{}).(spanIDs); ok {
		return ids.traceID
	}
	return RequestID(ctx)
}

// SpanID returns the id of the active span, if any.
func SpanID(ctx context.Context) string {
	ids, _ := ctx.Value(spanKey{}).(spanIDs)
	return ids.spanID
}
