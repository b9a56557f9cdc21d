package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	if metrics == nil {
		t.Fatal("expected non-nil metrics")
	}

	ctx := context.Background()
	metrics.RecordTask(ctx, "build", StatusChanged, 50*time.Millisecond)
	metrics.RecordRun(ctx, StatusOK, 2, 100*time.Millisecond)
	metrics.RecordError(ctx, "TASK_FAILED", "build")
}

func useRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func hasAttr(attrs []attribute.KeyValue, key, value string) bool {
	for _, kv := range attrs {
		if string(kv.Key) == key && kv.Value.Emit() == value {
			return true
		}
	}
	return false
}

func TestStartRun_RecordsSpan(t *testing.T) {
	exporter := useRecorder(t)

	ctx, run := StartRun(context.Background(), "run-1", []string{"build"})
	if RunSpanFromContext(ctx) != run {
		t.Fatal("expected run span in context")
	}
	run.End(ctx, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanRun {
		t.Errorf("expected span %q, got %q", SpanRun, spans[0].Name)
	}
	if !hasAttr(spans[0].Attributes, AttrRunID, "run-1") {
		t.Error("expected run id attribute")
	}
	if !hasAttr(spans[0].Attributes, AttrStatus, StatusOK) {
		t.Error("expected ok status")
	}
}

func TestStartRun_EndWithError(t *testing.T) {
	exporter := useRecorder(t)

	ctx, run := StartRun(context.Background(), "run-2", nil)
	run.End(ctx, fmt.Errorf("boom"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if !hasAttr(spans[0].Attributes, AttrStatus, StatusFailed) {
		t.Error("expected failed status")
	}
	if !hasAttr(spans[0].Attributes, AttrErrorMessage, "boom") {
		t.Error("expected error message attribute")
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestRunSpanFromContext_NotSet(t *testing.T) {
	if RunSpanFromContext(context.Background()) != nil {
		t.Error("expected nil when no run span is set")
	}
}

func TestRunSpan_Duration(t *testing.T) {
	_, run := StartRun(context.Background(), "run-3", nil)
	run.StartTime = time.Now().Add(-50 * time.Millisecond)

	duration := run.Duration()
	if duration < 45*time.Millisecond || duration > 200*time.Millisecond {
		t.Errorf("expected duration around 50ms, got %v", duration)
	}
}

func TestTracer(t *testing.T) {
	tracer := Tracer("test-tracer")
	if tracer == nil {
		t.Fatal("expected non-nil tracer")
	}
}

func TestMeter(t *testing.T) {
	meter := Meter("test-meter")
	if meter == nil {
		t.Fatal("expected non-nil meter")
	}
}

func TestStartSpan(t *testing.T) {
	exporter := useRecorder(t)

	_, span := StartSpan(context.Background(), "test-operation")
	span.End()

	if spans := exporter.GetSpans(); len(spans) != 1 || spans[0].Name != "test-operation" {
		t.Errorf("expected one test-operation span, got %v", spans)
	}
}

func TestStartTask(t *testing.T) {
	exporter := useRecorder(t)

	ctx, run := StartRun(context.Background(), "run-4", []string{"build"})
	_, ok := StartTask(ctx, "butler", "generate", "run-4")
	ok.End(true, nil)
	_, bad := StartTask(ctx, "butler", "build", "run-4")
	bad.End(false, fmt.Errorf("compile error"))
	run.End(ctx, nil)

	spans := map[string]tracetest.SpanStub{}
	for _, s := range exporter.GetSpans() {
		spans[s.Name] = s
	}
	gen, build := spans["butler.generate"], spans["butler.build"]

	if gen.Parent.SpanID() != spans[SpanRun].SpanContext.SpanID() {
		t.Error("expected task span to be a child of the run span")
	}
	if !hasAttr(gen.Attributes, AttrTask, "generate") || !hasAttr(gen.Attributes, AttrRunID, "run-4") {
		t.Error("expected task and run id attributes")
	}
	if !hasAttr(gen.Attributes, AttrStatus, StatusChanged) {
		t.Error("expected changed status")
	}
	if !hasAttr(build.Attributes, AttrStatus, StatusFailed) {
		t.Error("expected failed status")
	}
	if !hasAttr(build.Attributes, AttrErrorMessage, "compile error") || len(build.Events) == 0 {
		t.Error("expected the error on the span")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}

func TestService_Resource(t *testing.T) {
	res, err := Service{Name: "butler", Version: "1.2.3", Environment: "ci"}.resource()
	if err != nil {
		t.Skipf("resource merge failed (schema conflict): %v", err)
	}
	if !hasAttr(res.Attributes(), "service.name", "butler") {
		t.Error("expected service.name attribute")
	}
	if !hasAttr(res.Attributes(), "environment", "ci") {
		t.Error("expected environment attribute")
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	if cfg.Enabled() {
		t.Error("expected telemetry disabled without endpoint")
	}
	cfg.ApplyDefaults()
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected Environment 'development', got %q", cfg.Environment)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "butler", "dev", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func testConfig() (Service, Config) {
	cfg := Config{Endpoint: "localhost:4318", Insecure: true}
	cfg.ApplyDefaults()
	return Service{Name: "test", Version: "1.0.0", Environment: "test"}, cfg
}

func TestInitTracer(t *testing.T) {
	svc, cfg := testConfig()
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	tp, err := InitTracer(context.Background(), svc, cfg)
	if err != nil {
		t.Skipf("InitTracer failed (schema conflict): %v", err)
	}
	defer tp.Shutdown(context.Background())

	if otel.GetTracerProvider() != tp {
		t.Error("expected the provider to be installed globally")
	}
}

func TestInitMeter(t *testing.T) {
	svc, cfg := testConfig()
	prev := otel.GetMeterProvider()
	defer otel.SetMeterProvider(prev)

	mp, err := InitMeter(context.Background(), svc, cfg)
	if err != nil {
		t.Skipf("InitMeter failed (schema conflict): %v", err)
	}
	defer mp.Shutdown(context.Background())

	if otel.GetMeterProvider() != mp {
		t.Error("expected the provider to be installed globally")
	}
}
