// Package gcs provides the Fx module for the GCS storage adapter.
package gcs

import (
	"go.uber.org/fx"

	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
)

// Module provides the GCSProvider to the Fx application graph.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGCSProvider,
		fx.As(new(storageAdapter.StorageProvider)),
		fx.ResultTags(`group:"storage_providers"`),
	)),
)
