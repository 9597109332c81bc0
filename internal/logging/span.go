package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one engine operation and logs its outcome when ended.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	err    error
}

// StartSpan opens a span named name under ctx. The returned context carries a
// logger annotated with the trace, span and parent span ids.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanID(ctx)
	ids := spanIDs{traceID: TraceID(ctx), spanID: uuid.NewString()}

	if ids.traceID == "" {
		ids.traceID = uuid.NewString()
	}

	attrs := make([]any, 0, 4)
	if parent == "" {
		attrs = append(attrs, slog.String("trace_id", ids.traceID))
	}
	attrs = append(attrs, slog.String("span_id", ids.spanID), slog.String("span_name", name))
	if parent != "" {
		attrs = append(attrs, slog.String("parent_span_id", parent))
	}

	logger := FromContext(ctx).With(attrs...)
	ctx = context.WithValue(ctx, spanKey{}, ids)
	return WithLogger(ctx, logger), &Span{name: name, logger: logger, start: time.Now()}
}

// Fail records err as the span's outcome. The last non-nil error wins.
func (s *Span) Fail(err error) {
	if s != nil && err != nil {
		s.err = err
	}
}

// End logs the span's duration at debug level, or at warn when it failed.
func (s *Span) End() {
	if s == nil {
		return
	}
	elapsed := slog.Duration("duration", time.Since(s.start))
	if s.err != nil {
		s.logger.Warn("span failed", elapsed, slog.Any("error", s.err))
		return
	}
	s.logger.Debug("span completed", elapsed)
}
