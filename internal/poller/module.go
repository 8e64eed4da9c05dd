package poller

import "go.uber.org/fx"

// Module provides the ingestion loop.
var Module = fx.Options(
	fx.Provide(New),
)
