package tracing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/volunteerhq/volunteer-api/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer handed to the dispatcher.
const InstrumentationName = "github.com/volunteerhq/volunteer-api"

// Provider owns the process tracer provider. A disabled Provider hands out
// no-op tracers and has nothing to flush.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// New builds a Provider from cfg. When tracing is enabled spans are batched
// to an OTLP/gRPC collector and the provider is installed globally together
// with W3C trace context propagation.
func New(ctx context.Context, cfg config.TracingConfig, log *slog.Logger) (*Provider, error) {
	if log == nil {
		log = slog.Default()
	}
	if !cfg.Enabled {
		log.InfoContext(ctx, "tracing disabled")
		return &Provider{tracer: noop.NewTracerProvider().Tracer(InstrumentationName)}, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := NewTracerProvider(res, Sampler(cfg.SampleRate),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.InfoContext(ctx, "tracing initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("endpoint", cfg.Endpoint),
		slog.Float64("sample_rate", cfg.SampleRate),
		slog.Bool("insecure", cfg.Insecure))

	return &Provider{provider: tp, tracer: tp.Tracer(InstrumentationName)}, nil
}

// NewTracerProvider builds an SDK provider for res with sampler applied to
// new traces. Child spans follow their parent's decision.
func NewTracerProvider(res *resource.Resource, sampler sdktrace.Sampler, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	opts = append([]sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	}, opts...)
	return sdktrace.NewTracerProvider(opts...)
}

// Sampler maps a rate in [0, 1] onto a root sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.provider != nil
}

// Tracer returns the tracer the dispatcher records on.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown flushes buffered spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}
