package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/mathproxy/observe/exporters"
)

// Config selects what the proxy emits.
type Config struct {
	ServiceName string
	Version     string

	// InstanceID tags every span, metric and log line of this process.
	// Empty generates a random one.
	InstanceID string

	Tracing TracingConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

type TracingConfig struct {
	Enabled   bool
	Exporter  string  // stdout|otlp|none
	SamplePct float64 // 0 samples nothing, 1 samples every request
}

type MetricsConfig struct {
	Enabled  bool
	Exporter string // stdout|otlp|prometheus|none
}

type LoggingConfig struct {
	Enabled bool
	Level   string // debug|info|warn|error

	// Writer receives JSON lines. Defaults to os.Stderr.
	Writer io.Writer
}

// Validate checks only the subsystems that are enabled.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Tracing.Enabled {
		if !slices.Contains(ValidTracingExporters, c.Tracing.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < 0 || c.Tracing.SamplePct > 1 {
			return fmt.Errorf("%w: got %g", ErrInvalidSamplePct, c.Tracing.SamplePct)
		}
	}
	if c.Metrics.Enabled && !slices.Contains(ValidMetricsExporters, c.Metrics.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	}
	if c.Logging.Enabled && !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return nil
}

// Observer hands out the proxy's telemetry primitives.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: Shutdown honors the context deadline while flushing.
// - Errors: Shutdown reports every provider that failed to stop.
type Observer interface {
	Tracer() Tracer
	Metrics() Metrics
	Logger() Logger
	Shutdown(ctx context.Context) error
}

type observer struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger

	// shutdown hooks, run in reverse order of installation.
	stops []func(context.Context) error
}

// NewObserver installs the configured providers as the otel globals and
// returns an Observer over them. Disabled subsystems get noop primitives.
func NewObserver(ctx context.Context, cfg Config) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.ServiceInstanceID(cfg.InstanceID),
	))
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	obs := &observer{logger: NopLogger()}

	if cfg.Tracing.Enabled {
		tp, err := tracerProvider(ctx, cfg.Tracing, res)
		if err != nil {
			return nil, err
		}
		otel.SetTracerProvider(tp)
		obs.stops = append(obs.stops, tp.Shutdown)
		obs.tracer = NewTracer(tp.Tracer(cfg.ServiceName))
	} else {
		obs.tracer = NewTracer(tracenoop.NewTracerProvider().Tracer(cfg.ServiceName))
	}

	meter := noop.NewMeterProvider().Meter(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		mp, err := meterProvider(ctx, cfg.Metrics, res)
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, err
		}
		otel.SetMeterProvider(mp)
		obs.stops = append(obs.stops, mp.Shutdown)
		meter = mp.Meter(cfg.ServiceName)
	}
	if obs.metrics, err = NewMetrics(meter); err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("observe: instruments: %w", err)
	}

	if cfg.Logging.Enabled {
		w := cfg.Logging.Writer
		if w == nil {
			w = os.Stderr
		}
		obs.logger = NewLoggerWithWriter(cfg.Logging.Level, w).With(
			Field{Key: "service", Value: cfg.ServiceName},
			Field{Key: "instance", Value: cfg.InstanceID},
		)
	}

	return obs, nil
}

func tracerProvider(ctx context.Context, cfg TracingConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exp, err := exporters.NewTracingExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("observe: tracing: %w", err)
	}

	// Upstream calls and renders are children of the solve span, so
	// sampling follows the parent once the root is decided.
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplePct))

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exp),
	), nil
}

func meterProvider(ctx context.Context, cfg MetricsConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	reader, err := exporters.NewMetricsReader(ctx, cfg.Exporter)
	if err != nil {
		return nil, fmt.Errorf("observe: metrics: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	), nil
}

func (o *observer) Tracer() Tracer   { return o.tracer }
func (o *observer) Metrics() Metrics { return o.metrics }
func (o *observer) Logger() Logger   { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(o.stops) - 1; i >= 0; i-- {
		if err := o.stops[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	o.stops = nil
	return errors.Join(errs...)
}

// Nop returns an Observer that discards everything.
func Nop() Observer {
	return &observer{
		tracer:  NopTracer(),
		metrics: NopMetrics(),
		logger:  NopLogger(),
	}
}
