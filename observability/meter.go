package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/butler/logger"
)

// Task outcome labels.
const (
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
	StatusFailed    = "failed"
	StatusOK        = "ok"
)

// InitMeter installs a global meter provider pushing to cfg.Endpoint over
// OTLP/HTTP every cfg.Interval.
func InitMeter(ctx context.Context, svc Service, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := svc.resource()
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"service", svc.Name,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded while running tasks.
type Metrics struct {
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	taskTotal    metric.Int64Counter
	taskDuration metric.Float64Histogram
	taskSkipped  metric.Int64Counter
	errorTotal   metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("butler.run.total",
		metric.WithDescription("Total number of runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating butler.run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("butler.run.duration",
		metric.WithDescription("Duration of runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating butler.run.duration histogram: %w", err)
	}

	taskTotal, err := meter.Int64Counter("butler.task.total",
		metric.WithDescription("Total number of task invocations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating butler.task.total counter: %w", err)
	}

	taskDuration, err := meter.Float64Histogram("butler.task.duration",
		metric.WithDescription("Duration of task invocations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating butler.task.duration histogram: %w", err)
	}

	taskSkipped, err := meter.Int64Counter("butler.task.skipped",
		metric.WithDescription("Tasks skipped because no dependency changed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating butler.task.skipped counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("butler.error.total",
		metric.WithDescription("Total errors by code and task"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating butler.error.total counter: %w", err)
	}

	return &Metrics{
		runTotal:     runTotal,
		runDuration:  runDuration,
		taskTotal:    taskTotal,
		taskDuration: taskDuration,
		taskSkipped:  taskSkipped,
		errorTotal:   errorTotal,
	}, nil
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(ctx context.Context, status string, skipped int, duration time.Duration) {
	m.runTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.runDuration.Record(ctx, duration.Seconds())
	if skipped > 0 {
		m.taskSkipped.Add(ctx, int64(skipped))
	}
}

// RecordTask records one task invocation.
func (m *Metrics) RecordTask(ctx context.Context, task, status string, duration time.Duration) {
	m.taskTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", task),
		attribute.String("status", status),
	))
	m.taskDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("task", task),
	))
}

// RecordError records an error by code and task.
func (m *Metrics) RecordError(ctx context.Context, code, task string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("task", task),
	))
}
