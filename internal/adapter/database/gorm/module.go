package gorm

import "go.uber.org/fx"

// Module provides the connection resolver over all registered DB providers.
// The concrete providers themselves are supplied by the application entry
// point, which selects them per deployment.
var Module = fx.Options(
	fx.Provide(NewConnectionResolver),
)
