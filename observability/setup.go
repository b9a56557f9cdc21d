package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Config selects where telemetry goes. An empty Endpoint disables export
// and leaves the no-op global providers in place.
type Config struct {
	// Endpoint is the OTLP/HTTP collector host:port, e.g. "localhost:4318".
	Endpoint    string        `mapstructure:"endpoint"`
	Insecure    bool          `mapstructure:"insecure"`
	SampleRate  float64       `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Environment string        `mapstructure:"environment"`
	Interval    time.Duration `mapstructure:"interval"`
}

// Enabled reports whether telemetry should be exported.
func (c Config) Enabled() bool { return c.Endpoint != "" }

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

// Service identifies this process in exported telemetry.
type Service struct {
	Name        string
	Version     string
	Environment string
}

func (s Service) resource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(s.Name),
			semconv.ServiceVersion(s.Version),
			attribute.String("environment", s.Environment),
		),
	)
}

// Setup initializes tracing and metrics for serviceName. The returned
// shutdown flushes both providers.
func Setup(ctx context.Context, serviceName, version string, cfg Config) (shutdown func(context.Context) error, err error) {
	if !cfg.Enabled() {
		return func(context.Context) error { return nil }, nil
	}
	cfg.ApplyDefaults()
	svc := Service{Name: serviceName, Version: version, Environment: cfg.Environment}

	tp, err := InitTracer(ctx, svc, cfg)
	if err != nil {
		return nil, err
	}

	mp, err := InitMeter(ctx, svc, cfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
