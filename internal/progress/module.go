package progress

import (
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// NewStore resolves the checkpoint database connection declared under
// uplink.progress.db_ref and wraps it in a Store.
func NewStore(cfg *config.Config, resolver database.ConnectionResolver) (Store, error) {
	dbConn, err := resolver.Resolve(cfg.Uplink.Progress.DBRef)
	if err != nil {
		return nil, err
	}
	return NewGormStore(dbConn), nil
}

// NewProgressMigrator builds the Migrator over the same connection the Store
// uses.
func NewProgressMigrator(cfg *config.Config, resolver database.ConnectionResolver) (Migrator, error) {
	dbConn, err := resolver.Resolve(cfg.Uplink.Progress.DBRef)
	if err != nil {
		return nil, err
	}
	return NewMigrator(dbConn), nil
}

// Module provides the checkpoint store and its schema migrator.
var Module = fx.Options(
	fx.Provide(NewStore),
	fx.Provide(NewProgressMigrator),
)
