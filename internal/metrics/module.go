package metrics

import "go.uber.org/fx"

// Module provides the Prometheus recorder, the scrape endpoint and the
// tracer.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorder),
	fx.Provide(NewTracer),
	fx.Invoke(RegisterMetricsServer),
)
