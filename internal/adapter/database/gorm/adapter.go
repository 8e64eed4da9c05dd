// Package gorm implements the database adapter on top of GORM, with a
// dialector registry populated by the driver subpackages.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// NewGormLogger creates a gorm logger that routes output through the
// application logger. SQL statements surface only at DEBUG level.
func NewGormLogger() gorm_logger.Interface {
	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gorm_logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the application logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements gorm_logger.Writer.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	// SQL trace lines look like [<duration>ms] SELECT ...; keep them at DEBUG.
	if strings.Contains(msg, "[") && strings.Contains(msg, "]") &&
		(strings.Contains(msg, "SELECT") || strings.Contains(msg, "INSERT") || strings.Contains(msg, "UPDATE") || strings.Contains(msg, "DELETE")) {
		logger.Debugf("[GORM] %s", msg)
	} else {
		logger.Infof("[GORM] %s", msg)
	}
}

// GormDBAdapter implements database.DBConnection.
type GormDBAdapter struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	cfg    dbconfig.DatabaseConfig
	dbType string
	name   string
}

// NewGormDBAdapter creates a new GormDBAdapter.
func NewGormDBAdapter(db *gorm.DB, cfg dbconfig.DatabaseConfig, name string) database.DBConnection {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("Failed to get underlying *sql.DB: %v", err)
	}

	return &GormDBAdapter{
		db:     db,
		sqlDB:  sqlDB,
		cfg:    cfg,
		dbType: cfg.Type,
		name:   name,
	}
}

// GORM returns the underlying *gorm.DB instance.
func (a *GormDBAdapter) GORM() *gorm.DB {
	return a.db
}

// GetSQLDB implements database.DBConnection.
func (a *GormDBAdapter) GetSQLDB() (*sql.DB, error) {
	if a.sqlDB == nil {
		return nil, fmt.Errorf("underlying sql.DB is nil")
	}
	return a.sqlDB, nil
}

func (a *GormDBAdapter) Type() string {
	return a.dbType
}

func (a *GormDBAdapter) Name() string {
	return a.name
}

// Ping implements database.DBConnection.
func (a *GormDBAdapter) Ping(ctx context.Context) error {
	if a.sqlDB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	return a.sqlDB.PingContext(ctx)
}

// Config implements database.DBConnection.
func (a *GormDBAdapter) Config() dbconfig.DatabaseConfig {
	return a.cfg
}

func (a *GormDBAdapter) Close() error {
	if a.sqlDB != nil {
		logger.Infof("Closing database connection '%s'...", a.name)
		return a.sqlDB.Close()
	}
	return nil
}
