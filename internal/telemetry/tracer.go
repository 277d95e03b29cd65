// Package telemetry wires OpenTelemetry tracing for pipeline runs.
package telemetry

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// DefaultServiceName names the service in exported spans.
const DefaultServiceName = "contour-pipeline"

// InitTracer installs a global tracer provider that writes spans as JSON to
// w (stderr when nil) and returns its shutdown function.
func InitTracer(serviceName string, w io.Writer, logger zerolog.Logger) (func(context.Context) error, error) {
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	if w == nil {
		w = os.Stderr
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Info().Str("service", serviceName).Msg("tracing initialized")

	return tp.Shutdown, nil
}
