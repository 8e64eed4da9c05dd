// Package mysql provides a GORM DBProvider implementation for MySQL databases.
package mysql

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"
	gormadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm"
	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// init registers the MySQL dialector factory with the gorm adapter.
func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		p := &gormadapter.MySQLDBProvider{}
		connStr := p.ConnectionString(cfg)
		return mysql.Open(connStr), nil
	})
}

// NewProvider creates a new MySQL DBProvider.
// This function is intended to be used with fx.Provide.
func NewProvider(cfg *config.Config) database.DBProvider {
	return gormadapter.NewMySQLProvider(cfg)
}
