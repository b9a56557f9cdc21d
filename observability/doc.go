// Package observability provides OpenTelemetry tracing and metrics for
// task runs.
//
// Setup wires both OTLP exporters from configuration and is a no-op when
// no endpoint is configured:
//
//	shutdown, err := observability.Setup(ctx, "butler", version.Get().Short(), cfg.Telemetry)
//	defer shutdown(ctx)
//
// A run opens one span; every task invocation gets a child span:
//
//	ctx, run := observability.StartRun(ctx, runID, targets)
//	defer run.End(ctx, err)
//
//	ctx, span := observability.StartTask(ctx, "butler", "build", runID)
//	span.End(res.Changed, err)
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("butler"))
//	metrics.RecordTask(ctx, "build", observability.StatusChanged, duration)
package observability
