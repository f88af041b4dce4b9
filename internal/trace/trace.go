// Package trace wires OpenTelemetry tracing for device sessions.
package trace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by this module.
const TracerName = "github.com/cwbudde/algo-binaural"

// Exporter names accepted by Config.Exporter.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ErrAlreadyInitialized is returned by a second Initialize without Shutdown.
var ErrAlreadyInitialized = errors.New("trace: already initialized")

// Config selects the exporter.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Exporter       string // "none", "stdout" or "otlp"
	OTLPEndpoint   string // host:port for the otlp exporter
}

// DefaultConfig returns a disabled configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "binaural-virtualizer",
		ServiceVersion: "0.1.0",
		Exporter:       ExporterNone,
		OTLPEndpoint:   "localhost:4317",
	}
}

var (
	mu       sync.RWMutex
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
)

// Initialize installs the global tracer provider.
func Initialize(ctx context.Context, cfg Config) error {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch cfg.Exporter {
	case ExporterNone, "":
		return initialize(cfg, nil)
	case ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case ExporterOTLP:
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		exp, err = otlptrace.New(ctx, client)
	default:
		return fmt.Errorf("trace: unsupported exporter %q", cfg.Exporter)
	}
	if err != nil {
		return fmt.Errorf("trace: create %s exporter: %w", cfg.Exporter, err)
	}
	return initialize(cfg, exp)
}

// initialize installs a provider batching into exp. A nil exporter records
// nothing.
func initialize(cfg Config, exp sdktrace.SpanExporter) error {
	mu.Lock()
	defer mu.Unlock()

	if provider != nil {
		return ErrAlreadyInitialized
	}

	res, err := resource.Merge(
		resource.Default(),
		// schemaless so the merge never conflicts with the SDK default schema
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return fmt.Errorf("trace: resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	provider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(TracerName)
	return nil
}

// Shutdown flushes and removes the provider.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if provider == nil {
		return nil
	}
	err := provider.Shutdown(ctx)
	provider, tracer = nil, nil
	if err != nil {
		return fmt.Errorf("trace: shutdown: %w", err)
	}
	return nil
}

// Tracer returns the module tracer, or the global no-op one before
// Initialize.
func Tracer() oteltrace.Tracer {
	mu.RLock()
	defer mu.RUnlock()

	if tracer == nil {
		return otel.Tracer(TracerName)
	}
	return tracer
}

// StartSpan starts a span with attrs.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, oteltrace.Span) {
	return Tracer().Start(ctx, name, oteltrace.WithAttributes(attrs...))
}

// RecordError marks span failed with err. A nil err is ignored.
func RecordError(span oteltrace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// WithSpan runs fn inside a span named name.
func WithSpan(ctx context.Context, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := StartSpan(ctx, name, attrs...)
	defer span.End()

	err := fn(ctx)
	RecordError(span, err)
	return err
}
