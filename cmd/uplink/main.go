package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "embed"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	gormadapter "github.com/nyuad-access/fidas-uplink/internal/adapter/database/gorm"
	"github.com/nyuad-access/fidas-uplink/internal/app"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"

	"go.uber.org/fx"
)

// embeddedConfig embeds the content of the application's YAML configuration
// file, loaded at startup.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// migrationsFS bundles the checkpoint schema migration scripts into the
// binary.
//
//go:embed all:resources/migrations
var migrationsFS embed.FS

// getDBProviderOptions selects the DB providers to register based on the
// "DB_ADAPTORS" environment variable (comma-separated). If unset, Postgres,
// MySQL and SQLite are all registered.
func getDBProviderOptions() []fx.Option {
	adaptors := os.Getenv("DB_ADAPTORS")
	if adaptors == "" {
		adaptors = "postgres,mysql,sqlite"
	}

	options := make([]fx.Option, 0)
	for _, adaptorName := range strings.Split(adaptors, ",") {
		adaptorName = strings.TrimSpace(adaptorName)
		if adaptorName == "" {
			continue
		}

		if provider, ok := app.DBProviderMap[adaptorName]; ok {
			options = append(options, fx.Provide(fx.Annotate(provider, fx.ResultTags(`group:"`+gormadapter.DBProviderGroup+`"`))))
			logger.Debugf("DB Provider '%s' selected and registered.", adaptorName)
		} else {
			logger.Warnf("DB Provider '%s' is configured but not recognized/supported. Skipping.", adaptorName)
		}
	}
	return options
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handling for graceful shutdown (e.g., Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Stopping the ingestion loop...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	dbProviderOptions := getDBProviderOptions()

	app.RunApplication(ctx, envFilePath, embeddedConfig, migrationsFS, dbProviderOptions)
	os.Exit(0)
}
