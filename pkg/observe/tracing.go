package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for Frond applications.
const defaultTracerName = "frond"

// TracingConfig configures the OpenTelemetry build observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "frond").
	TracerName string

	// Tracer overrides the tracer resolved from the global provider.
	Tracer trace.Tracer

	// IncludePaths includes node paths as span attributes.
	// Enabled by default.
	IncludePaths bool
}

// TracingOption configures the OpenTelemetry build observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets an explicit tracer instance.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithIncludePaths enables or disables node path attributes.
func WithIncludePaths(include bool) TracingOption {
	return func(c *TracingConfig) {
		c.IncludePaths = include
	}
}

// Tracing is a build.Observer that records one span per node build and
// one per flush pass. Build spans started during a flush become children
// of the flush span.
type Tracing struct {
	tracer       trace.Tracer
	includePaths bool

	mu     sync.Mutex
	builds map[string]trace.Span
	flush  trace.Span
	fctx   context.Context
}

// NewTracing creates the OpenTelemetry build observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{
		TracerName:   defaultTracerName,
		IncludePaths: true,
	}
	for _, opt := range opts {
		opt(&config)
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{
		tracer:       tracer,
		includePaths: config.IncludePaths,
		builds:       make(map[string]trace.Span),
		fctx:         context.Background(),
	}
}

// BuildStart implements build.Observer.
func (t *Tracing) BuildStart(path string) {
	t.mu.Lock()
	parent := t.fctx
	t.mu.Unlock()

	var opts []trace.SpanStartOption
	if t.includePaths {
		opts = append(opts, trace.WithAttributes(attribute.String("frond.node.path", path)))
	}
	_, span := t.tracer.Start(parent, "frond.build", opts...)

	t.mu.Lock()
	t.builds[path] = span
	t.mu.Unlock()
}

// BuildEnd implements build.Observer.
func (t *Tracing) BuildEnd(path string, err error, _ time.Duration) {
	t.mu.Lock()
	span, ok := t.builds[path]
	delete(t.builds, path)
	t.mu.Unlock()
	if !ok {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// FlushStart implements build.Observer.
func (t *Tracing) FlushStart() {
	ctx, span := t.tracer.Start(context.Background(), "frond.flush")
	t.mu.Lock()
	t.flush = span
	t.fctx = ctx
	t.mu.Unlock()
}

// FlushEnd implements build.Observer.
func (t *Tracing) FlushEnd(affected int, _ time.Duration) {
	t.mu.Lock()
	span := t.flush
	t.flush = nil
	t.fctx = context.Background()
	t.mu.Unlock()
	if span == nil {
		return
	}

	span.SetAttributes(attribute.Int("frond.flush.affected", affected))
	span.End()
}
