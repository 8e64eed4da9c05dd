// Package app wires the uplink's components into an Fx application and runs
// the ingestion loop until the process is signalled.
package app

import (
	"context"
	"embed"
	"io/fs"

	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	"github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm/mysql"
	"github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm/postgres"
	"github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm/sqlite"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/poller"
	"github.com/nyuad-access/fidas-uplink/internal/progress"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"

	gormadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm"
	storageadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
	storagegcs "github.com/nyuad-access/fidas-uplink/internal/adapter/storage/gcs"
	storagelocal "github.com/nyuad-access/fidas-uplink/internal/adapter/storage/local"
	"github.com/nyuad-access/fidas-uplink/internal/aggregate"
	"github.com/nyuad-access/fidas-uplink/internal/delivery"
	"github.com/nyuad-access/fidas-uplink/internal/metrics"
	"github.com/nyuad-access/fidas-uplink/internal/sink"
	"github.com/nyuad-access/fidas-uplink/internal/source"
)

// DBProviderMap is used by main.go to dynamically select providers.
var DBProviderMap = map[string]func(cfg *config.Config) database.DBProvider{
	"postgres": postgres.NewProvider,
	"mysql":    mysql.NewProvider,
	"sqlite":   sqlite.NewProvider,
}

// RunApplication sets up and runs the uplink application using uber-fx.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS embed.FS, dbProviderOptions []fx.Option) {
	// Context setting and signal handling live in main.go.

	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level based on loaded configuration before Fx starts logging.
	logger.SetLogLevel(cfg.Uplink.System.Logging.Level)

	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(
				migrationsFS,
				fx.ResultTags(`name:"rawMigrationsFS"`),
			),
			fx.Annotate(
				appCtx,
				fx.As(new(context.Context)),
				fx.ResultTags(`name:"appCtx"`),
			),
		),

		fx.Options(dbProviderOptions...),
		logger.Module,
		config.Module,
		gormadapter.Module,
		storageadapter.Module,
		storagelocal.Module,
		storagegcs.Module,
		progress.Module,
		aggregate.Module,
		source.Module,
		sink.Module,
		delivery.Module,
		metrics.Module,
		poller.Module,

		// Strip the go:embed prefix so the migrator sees the files directly.
		fx.Provide(fx.Annotate(
			func(params struct {
				fx.In
				RawMigrationsFS embed.FS `name:"rawMigrationsFS"`
			}) fs.FS {
				subFS, err := fs.Sub(params.RawMigrationsFS, "resources/migrations")
				if err != nil {
					logger.Fatalf("Failed to create subdirectory for migration FS: %v", err)
				}
				return subFS
			},
			fx.ResultTags(`name:"migrationsFS"`),
		)),

		fx.Invoke(fx.Annotate(startIngestion, fx.ParamTags(
			"",                    // lc fx.Lifecycle
			"",                    // shutdowner fx.Shutdowner
			"",                    // migrator progress.Migrator
			"",                    // ingestionLoop *poller.Poller
			`name:"migrationsFS"`, // migrationsFS fs.FS
			`name:"appCtx"`,       // appCtx context.Context
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// startIngestion registers the lifecycle hook that migrates the checkpoint
// schema and then drives the ingestion loop until the context is cancelled.
func startIngestion(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	migrator progress.Migrator,
	ingestionLoop *poller.Poller,
	migrationsFS fs.FS,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in ingestion loop: %v", r)
					}
					logger.Infof("Requesting application shutdown after ingestion loop exit.")
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()

				if err := migrator.Up(appCtx, migrationsFS, "."); err != nil {
					logger.Errorf("Checkpoint schema migration failed: %v", err)
					return
				}

				if err := ingestionLoop.Run(appCtx); err != nil {
					logger.Errorf("Ingestion loop exited with error: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application stopping.")
			return nil
		},
	})
}
