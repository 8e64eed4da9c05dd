// Package local provides the Fx module for the local storage adapter.
package local

import (
	"go.uber.org/fx"

	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
)

// Module provides the LocalProvider to the Fx application graph.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLocalProvider,
		fx.As(new(storageAdapter.StorageProvider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
