package progress

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// MigrationsTable is the bookkeeping table golang-migrate maintains for the
// checkpoint schema.
const MigrationsTable = "uplink_schema_migrations"

// Migrator applies the processing_status schema migrations to the checkpoint
// database.
type Migrator interface {
	Up(ctx context.Context, migrationFS fs.FS, path string) error
	Close() error
}

type migratorImpl struct {
	dbConn database.DBConnection
	dbType string
}

// NewMigrator creates a Migrator for the given database connection.
func NewMigrator(dbConn database.DBConnection) Migrator {
	return &migratorImpl{
		dbConn: dbConn,
		dbType: dbConn.Type(),
	}
}

// getDatabaseDriver retrieves a migrate/v4 driver for the connection's type.
func (m *migratorImpl) getDatabaseDriver(sqlDB *sql.DB) (migratedb.Driver, error) {
	switch m.dbType {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{
			MigrationsTable: MigrationsTable,
		})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{
			MigrationsTable: MigrationsTable,
		})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{
			MigrationsTable: MigrationsTable,
		})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.dbType)
	}
}

func (m *migratorImpl) getMigrateInstance(migrationFS fs.FS, path string) (*migrate.Migrate, error) {
	sqlDB, err := m.dbConn.GetSQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}

	dbDriver, err := m.getDatabaseDriver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	mInstance, err := migrate.NewWithInstance("iofs", sourceDriver, m.dbType, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mInstance, nil
}

// Up applies all pending migrations from migrationFS under path.
func (m *migratorImpl) Up(ctx context.Context, migrationFS fs.FS, path string) error {
	logger.Infof("Applying checkpoint schema migrations (Path: %s, Table: %s)", path, MigrationsTable)

	mInstance, err := m.getMigrateInstance(migrationFS, path)
	if err != nil {
		return fmt.Errorf("failed to get migrate instance: %w", err)
	}
	defer mInstance.Close()

	if err := mInstance.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed (DB: %s, Path: %s): %w", m.dbType, path, err)
	}

	logger.Infof("Checkpoint schema migrations up to date.")
	return nil
}

func (m *migratorImpl) Close() error {
	// The migrate instance is closed inside Up, nothing to close here.
	return nil
}
