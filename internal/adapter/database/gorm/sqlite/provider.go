// Package sqlite provides a GORM DBProvider implementation for SQLite databases.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"
	gormadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm"
	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// init registers the SQLite dialector factory with the gorm adapter.
func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("sqlite database path cannot be empty")
		}
		p := &gormadapter.SQLiteDBProvider{}
		connStr := p.ConnectionString(cfg)
		return sqlite.Open(connStr), nil
	})
}

// NewProvider creates a new SQLite DBProvider.
// This function is intended to be used with fx.Provide.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewSQLiteProvider(cfg)
}
