package source

import (
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	storageAdapter "github.com/nyuad-access/fidas-uplink/internal/adapter/storage"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

// SourcesParams defines the dependencies for NewSources.
type SourcesParams struct {
	fx.In
	Config          *config.Config
	DBResolver      database.ConnectionResolver
	StorageResolver storageAdapter.ConnectionResolver
}

// NewSources builds one Source per entry of uplink.sources, resolving each
// entry's backing connection.
func NewSources(params SourcesParams) ([]Source, error) {
	sources := make([]Source, 0, len(params.Config.Uplink.Sources))

	for _, srcCfg := range params.Config.Uplink.Sources {
		if srcCfg.Name == "" {
			return nil, exception.New("source", "source entry is missing a name", nil, false)
		}

		switch srcCfg.Type {
		case "sql":
			if srcCfg.DBRef == "" || srcCfg.Table == "" {
				return nil, exception.Newf("source", "sql source '%s' needs db_ref and table", srcCfg.Name)
			}
			dbConn, err := params.DBResolver.Resolve(srcCfg.DBRef)
			if err != nil {
				return nil, err
			}
			sources = append(sources, NewSQLSource(srcCfg, dbConn))

		case "files":
			if srcCfg.StorageRef == "" {
				return nil, exception.Newf("source", "files source '%s' needs storage_ref", srcCfg.Name)
			}
			conn, err := params.StorageResolver.Resolve(srcCfg.StorageRef)
			if err != nil {
				return nil, err
			}
			sources = append(sources, NewFileSource(srcCfg, conn))

		default:
			return nil, exception.Newf("source", "source '%s' has unknown type '%s'", srcCfg.Name, srcCfg.Type)
		}

		logger.Infof("Registered source '%s' (%s).", srcCfg.Name, srcCfg.Type)
	}

	return sources, nil
}

// Module provides the configured raw data sources.
var Module = fx.Options(
	fx.Provide(NewSources),
)
