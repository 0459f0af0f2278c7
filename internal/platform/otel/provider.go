// Package otel configures process-wide OpenTelemetry tracing.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/livedraft/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type settings struct {
	Endpoint string `env:"OTEL_ENDPOINT"`
	Enabled  string `env:"OTEL_ENABLED"`
}

// Setup initialises OpenTelemetry tracing for the given service.
//
// Tracing is opt-in: when LIVEDRAFT_OTEL_ENDPOINT is empty or
// LIVEDRAFT_OTEL_ENABLED is "false", Setup returns a no-op shutdown function
// and the global provider stays the default no-op one.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var cfg settings
	if err := config.ParseEnv(&cfg); err != nil {
		return noop, fmt.Errorf("otel settings: %w", err)
	}
	if strings.EqualFold(cfg.Enabled, "false") {
		return noop, nil
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
