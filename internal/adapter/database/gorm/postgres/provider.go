// Package postgres provides a GORM DBProvider implementation for PostgreSQL databases.
package postgres

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"
	gormadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm"
	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// init registers the PostgreSQL dialector factory with the gorm adapter.
func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		p := &gormadapter.PostgresDBProvider{}
		connStr := p.ConnectionString(cfg)
		return postgres.Open(connStr), nil
	})
}

// NewProvider creates a new PostgreSQL DBProvider.
// This function is intended to be used with fx.Provide.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewPostgresProvider(cfg)
}
