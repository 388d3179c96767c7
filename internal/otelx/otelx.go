// Package otelx is FactorDB's tracing helper: a thin wrapper around
// go.opentelemetry.io/otel span creation, grounded on the teacher's
// internal/distributedtracing package but reduced to FactorDB's own
// needs — a single endpoint setting rather than OPA's full bundle-driven
// config (TLS, sampling ratio, resource attributes, HTTP vs gRPC
// transport). With no endpoint configured, Init returns a provider that
// never samples, so Span's overhead is a single no-op method call.
package otelx

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/factorlabs/factordb"

// Init builds a TracerProvider for endpoint: a never-sampling provider
// if endpoint is empty, otherwise one that batches spans to an OTLP gRPC
// collector at endpoint over an insecure connection (collectors normally
// sit on the same trusted network as the store; TLS is left to a sidecar
// proxy, matching the teacher's own "insecure" escape hatch for internal
// deployments). The returned shutdown func flushes pending spans and
// closes the exporter; callers should defer it once at process exit.
func Init(ctx context.Context, endpoint string) (trace.TracerProvider, func(context.Context) error, error) {
	if endpoint == "" {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
		return tp, tp.Shutdown, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("otelx: creating OTLP exporter for %s: %w", endpoint, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return tp, tp.Shutdown, nil
}

// Tracer wraps a trace.Tracer obtained from a TracerProvider. Its zero
// value has a nil inner tracer and Span degenerates to a direct call,
// so a Facade or Executor built without tracing configured pays nothing.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer derives a Tracer from tp, named for FactorDB's own
// instrumentation scope.
func NewTracer(tp trace.TracerProvider) Tracer {
	if tp == nil {
		return Tracer{}
	}
	return Tracer{tracer: tp.Tracer(tracerName)}
}

// Span runs fn inside a span named name, recording any error fn returns
// as a span error before ending it. If t is the zero Tracer, fn runs
// with no span at all.
func (t Tracer) Span(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if t.tracer == nil {
		return fn(ctx)
	}
	ctx, span := t.tracer.Start(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
