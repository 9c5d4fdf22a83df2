// Package tracing wires OpenTelemetry tracing for batch verification
// runs.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps the OpenTelemetry tracer used by the verifier.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Config holds tracing configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	JaegerEndpoint string
	Environment    string
}

// NewTracer creates a tracer exporting to the configured Jaeger
// collector and installs it as the global provider.
func NewTracer(config Config) (*Tracer, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		tracer:   otel.Tracer(config.ServiceName),
		provider: tp,
	}, nil
}

// Noop returns a tracer that records nothing, for callers that run
// without a collector.
func Noop() *Tracer {
	return &Tracer{tracer: trace.NewNoopTracerProvider().Tracer("benchverify")}
}

// StartSpan starts a new span.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartVerificationSpan starts a span covering one run or submission
// verification.
func (t *Tracer) StartVerificationSpan(ctx context.Context, runID, benchmarkType, mode string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("verify.run_id", runID),
		attribute.String("verify.benchmark_type", benchmarkType),
		attribute.String("verify.mode", mode),
	}
	return t.tracer.Start(ctx, "verify.submission", trace.WithAttributes(attrs...))
}

// RecordSpanError records an error in a span.
func RecordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordSpanCategory records the resolved category in a span.
func RecordSpanCategory(span trace.Span, category string) {
	span.SetAttributes(attribute.String("verify.category", category))
	span.SetStatus(codes.Ok, "")
}

// Shutdown flushes and shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
