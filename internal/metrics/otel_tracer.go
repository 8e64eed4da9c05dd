package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// tracerName identifies this service's spans.
const tracerName = "fidas-uplink"

// NewTracer builds the application tracer. With an OTLP endpoint configured
// it exports spans over OTLP/HTTP; otherwise tracing is a no-op.
func NewTracer(lc fx.Lifecycle, cfg *config.Config) (trace.Tracer, error) {
	endpoint := cfg.Uplink.Tracing.OTLPEndpoint
	if endpoint == "" {
		logger.Debugf("Tracing disabled (no OTLP endpoint configured).")
		return noop.NewTracerProvider().Tracer(tracerName), nil
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(tracerName),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	logger.Infof("Tracing enabled, exporting to %s.", endpoint)
	return provider.Tracer(tracerName), nil
}
