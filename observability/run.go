package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunSpan tracks the span of one run.
type RunSpan struct {
	RunID     string
	Targets   []string
	StartTime time.Time

	span trace.Span
}

// StartRun opens the span that parents every task span of a run.
func StartRun(ctx context.Context, runID string, targets []string) (context.Context, *RunSpan) {
	ctx, span := StartSpan(ctx, SpanRun)
	span.SetAttributes(
		attribute.String(AttrRunID, runID),
		attribute.StringSlice(AttrTargets, targets),
	)
	rs := &RunSpan{
		RunID:     runID,
		Targets:   targets,
		StartTime: time.Now(),
		span:      span,
	}
	return context.WithValue(ctx, runSpanKey{}, rs), rs
}

// End closes the span, recording err when the run failed.
func (rs *RunSpan) End(_ context.Context, err error) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
		rs.span.RecordError(err)
		rs.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	rs.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, rs.Duration().Milliseconds()),
	)
	rs.span.End()
}

// Duration returns the elapsed time since the run started.
func (rs *RunSpan) Duration() time.Duration {
	return time.Since(rs.StartTime)
}

type runSpanKey struct{}

// RunSpanFromContext returns the RunSpan ctx belongs to, or nil.
func RunSpanFromContext(ctx context.Context) *RunSpan {
	if rs, ok := ctx.Value(runSpanKey{}).(*RunSpan); ok {
		return rs
	}
	return nil
}
