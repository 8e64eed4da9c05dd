package delivery

import "go.uber.org/fx"

// Module provides the ingestion API client.
var Module = fx.Options(
	fx.Provide(NewClient),
)
