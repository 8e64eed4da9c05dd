// Package database provides abstractions for named database connections.
// Concrete providers live in the gorm subpackage; callers resolve
// connections by the names declared under uplink.database in the
// configuration.
package database

import (
	"context"
	"database/sql"

	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"

	"gorm.io/gorm"
)

// DBConnection represents one named database connection.
type DBConnection interface {
	// GORM returns the underlying *gorm.DB for query building.
	GORM() *gorm.DB
	// GetSQLDB returns the underlying *sql.DB. Migration tooling needs it.
	GetSQLDB() (*sql.DB, error)
	// Type returns the database type (e.g. "mysql", "sqlite").
	Type() string
	// Name returns the connection name (e.g. "metadata", "observations").
	Name() string
	// Ping verifies the connection pool is still usable.
	Ping(ctx context.Context) error
	// Config returns the configuration the connection was opened with.
	Config() dbconfig.DatabaseConfig
	// Close closes the connection.
	Close() error
}

// DBProvider manages connections of a single database type.
type DBProvider interface {
	// Type returns the database type this provider handles.
	Type() string
	// GetConnection retrieves an existing connection by name or opens one.
	GetConnection(name string) (DBConnection, error)
	// CloseAll closes every connection managed by this provider.
	CloseAll() error
}

// ConnectionResolver resolves a configured connection name to a live
// connection, whatever its type.
type ConnectionResolver interface {
	Resolve(name string) (DBConnection, error)
	CloseAll() error
}
