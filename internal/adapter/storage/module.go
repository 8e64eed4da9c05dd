package storage

import "go.uber.org/fx"

// Module provides the connection resolver over all registered storage
// providers. The concrete providers are contributed by the backend
// subpackages via the storage_providers group.
var Module = fx.Options(
	fx.Provide(NewConnectionResolver),
)
