// Package telemetry emits the four action lifecycle events named in §6
// (action.start, action.stop, action.exception, action.retry) as OTel
// spans/events when enabled, and is a no-op otherwise. Grounded on the
// teacher's telemetry/otel.go OTelProvider (construction, shutdown,
// Span/Telemetry interface shape) and core/interfaces.go's
// Telemetry/Span/NoOpTelemetry contract.
package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/gomind-actions/actionkit/action"
)

// Span is the capability an invocation needs from whatever lifecycle
// tracker is active: end it, tag it, record an error on it. Matches
// core/interfaces.go's Span shape.
type Span interface {
	End()
	SetAttribute(key string, value any)
	RecordError(err error)
}

// Provider starts spans and records the four action lifecycle events.
// NoOpProvider and Tracer both implement it.
type Provider interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
	ActionStart(ctx context.Context, actionName string, params action.Params) (context.Context, Span)
	ActionStop(ctx context.Context, span Span, result action.Result)
	ActionException(ctx context.Context, span Span, exc *action.Exception)
	ActionRetry(ctx context.Context, span Span, attempt int, delay time.Duration)
	Shutdown(ctx context.Context) error
}

// noOpSpan and NoOpProvider mirror core/interfaces.go's NoOp* pair:
// telemetry is opt-in, so every call site can hold a Provider
// unconditionally and this variant absorbs every call when
// TelemetryEnabled is false.
type noOpSpan struct{}

func (noOpSpan) End()                        {}
func (noOpSpan) SetAttribute(string, any)    {}
func (noOpSpan) RecordError(error)           {}

type NoOpProvider struct{}

func (NoOpProvider) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, noOpSpan{}
}
func (NoOpProvider) ActionStart(ctx context.Context, actionName string, params action.Params) (context.Context, Span) {
	return ctx, noOpSpan{}
}
func (NoOpProvider) ActionStop(context.Context, Span, action.Result)             {}
func (NoOpProvider) ActionException(context.Context, Span, *action.Exception)   {}
func (NoOpProvider) ActionRetry(context.Context, Span, int, time.Duration)       {}
func (NoOpProvider) Shutdown(context.Context) error                             { return nil }

// Tracer is the real, OTel-backed Provider. Construction mirrors
// OTelProvider.NewOTelProvider: build a resource, wire an exporter into a
// batching TracerProvider, set it as the global provider.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider

	shutdownOnce sync.Once
}

// Config selects Tracer's exporter. Exactly one of OTLPEndpoint or
// UseStdout should be set; UseStdout is the local-development path
// (stdouttrace), OTLPEndpoint the production path (otlptracegrpc) —
// both are teacher dependencies, kept rather than dropped one in favor
// of the other.
type Config struct {
	ServiceName  string
	OTLPEndpoint string
	UseStdout    bool
}

// New builds a Tracer and sets it as the global OTel tracer provider.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if cfg.ServiceName == "" {
		return nil, action.NewConfiguration("telemetry: service name is required")
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(cfg.ServiceName),
	))
	if err != nil {
		return nil, action.NewException(action.Configuration, "telemetry: failed to build resource", map[string]any{"cause": err})
	}

	var exporter sdktrace.SpanExporter
	if cfg.UseStdout {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
	}
	if err != nil {
		return nil, action.NewException(action.Configuration, "telemetry: failed to build exporter", map[string]any{"cause": err})
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Tracer{tracer: tp.Tracer("actionkit"), provider: tp}, nil
}

func (t *Tracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	spanCtx, span := t.tracer.Start(ctx, name)
	return spanCtx, &otelSpan{span: span}
}

// ActionStart emits action.start: a span covering the whole invocation,
// tagged with the action name and sanitized params.
func (t *Tracer) ActionStart(ctx context.Context, actionName string, params action.Params) (context.Context, Span) {
	spanCtx, span := t.tracer.Start(ctx, "action.start")
	sanitized := Sanitize(params)
	s := &otelSpan{span: span}
	s.SetAttribute("action", actionName)
	for k, v := range sanitized {
		s.SetAttribute("params."+k, v)
	}
	return spanCtx, s
}

// ActionStop emits action.stop: attributes on the span recording the
// terminal outcome ("ok", and "kind" on failure), then ends it.
func (t *Tracer) ActionStop(ctx context.Context, span Span, result action.Result) {
	span.SetAttribute("ok", result.OK)
	if !result.OK && result.Err != nil {
		span.SetAttribute("kind", string(result.Err.Kind))
	}
	span.End()
}

// ActionException emits action.exception: records the error on the span
// without ending it (the span ends via ActionStop once the attempt
// concludes, which may be after a retry).
func (t *Tracer) ActionException(ctx context.Context, span Span, exc *action.Exception) {
	if exc == nil {
		return
	}
	span.SetAttribute("exception.kind", string(exc.Kind))
	span.RecordError(exc)
}

// ActionRetry emits action.retry: an attribute bump on the span noting
// the retry attempt number and the computed backoff delay.
func (t *Tracer) ActionRetry(ctx context.Context, span Span, attempt int, delay time.Duration) {
	span.SetAttribute("retry.attempt", attempt)
	span.SetAttribute("retry.delay_ms", delay.Milliseconds())
}

// Shutdown flushes and shuts down the underlying trace provider.
// Idempotent.
func (t *Tracer) Shutdown(ctx context.Context) (err error) {
	t.shutdownOnce.Do(func() {
		err = t.provider.Shutdown(ctx)
	})
	return err
}

// otelSpan adapts trace.Span to this package's narrower Span interface,
// the same wrapping role as the teacher's otelSpan in telemetry/otel.go.
type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
}
