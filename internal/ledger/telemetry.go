package ledger

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceVersion        = "1.0.0"
	defaultExportInterval = 5 * time.Second
)

type TelemetryProvider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
}

// TelemetryConfig describes where and how often telemetry is exported.
type TelemetryConfig struct {
	ServiceName    string
	Environment    string
	Endpoint       string
	ExportInterval time.Duration
}

// NewTelemetryProvider exports traces and metrics over OTLP/HTTP and installs
// the providers and the W3C propagators as the process globals.
func NewTelemetryProvider(ctx context.Context, cfg TelemetryConfig) (*TelemetryProvider, error) {
	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build resource: %w", err)
	}

	tracerProvider, err := newTracerProvider(ctx, cfg.Endpoint, res)
	if err != nil {
		return nil, err
	}

	meterProvider, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return NewTelemetryProviderWith(tracerProvider, meterProvider, cfg.ServiceName), nil
}

func newResource(ctx context.Context, cfg TelemetryConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(serviceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
}

func newTracerProvider(ctx context.Context, endpoint string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint+"/v1/traces"),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func newMeterProvider(ctx context.Context, cfg TelemetryConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(cfg.Endpoint+"/v1/metrics"),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	), nil
}

// NewTelemetryProviderWith wraps already configured SDK providers without
// touching the global ones.
func NewTelemetryProviderWith(tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider, serviceName string) *TelemetryProvider {
	return &TelemetryProvider{
		tracerProvider: tp,
		meterProvider:  mp,
		tracer:         tp.Tracer(serviceName),
		meter:          mp.Meter(serviceName),
	}
}

func (tp *TelemetryProvider) Tracer() trace.Tracer {
	return tp.tracer
}

func (tp *TelemetryProvider) Meter() metric.Meter {
	return tp.meter
}

func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if err := tp.tracerProvider.Shutdown(ctx); err != nil {
		return err
	}
	return tp.meterProvider.Shutdown(ctx)
}
