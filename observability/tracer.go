package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/butler/logger"
)

const defaultTracerName = "github.com/kbukum/butler/observability"

// Span names.
const (
	SpanRun = "butler.run"
)

// Attribute keys.
const (
	AttrRunID        = "butler.run_id"
	AttrTargets      = "butler.targets"
	AttrTask         = "butler.task"
	AttrChanged      = "butler.changed"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorMessage = "error.message"
)

// InitTracer installs a global tracer provider exporting spans to
// cfg.Endpoint over OTLP/HTTP. Shut the provider down on exit to flush.
func InitTracer(ctx context.Context, svc Service, cfg Config) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := svc.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Debug("tracer initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a span on the package tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(defaultTracerName).Start(ctx, name, opts...)
}

// TaskSpan wraps the span of one task invocation.
type TaskSpan struct {
	span trace.Span
}

// StartTask opens a span named "{prefix}.{task}" as a child of whatever
// span ctx carries, normally the run span.
func StartTask(ctx context.Context, prefix, task, runID string) (context.Context, *TaskSpan) {
	ctx, span := StartSpan(ctx, prefix+"."+task, trace.WithAttributes(
		attribute.String(AttrTask, task),
		attribute.String(AttrRunID, runID),
	))
	return ctx, &TaskSpan{span: span}
}

// End closes the span with the task's outcome.
func (ts *TaskSpan) End(changed bool, err error) {
	if err != nil {
		ts.span.RecordError(err)
		ts.span.SetAttributes(
			attribute.String(AttrStatus, StatusFailed),
			attribute.String(AttrErrorMessage, err.Error()),
		)
	} else {
		ts.span.SetAttributes(
			attribute.String(AttrStatus, taskStatus(changed)),
			attribute.Bool(AttrChanged, changed),
		)
	}
	ts.span.End()
}

func taskStatus(changed bool) string {
	if changed {
		return StatusChanged
	}
	return StatusUnchanged
}
