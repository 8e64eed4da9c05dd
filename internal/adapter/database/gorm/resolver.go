package gorm

import (
	"github.com/mitchellh/mapstructure"
	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/adapter/database"
	dbconfig "github.com/nyuad-access/fidas-uplink/internal/adapter/database/config"
	"github.com/nyuad-access/fidas-uplink/internal/config"
	"github.com/nyuad-access/fidas-uplink/internal/support/exception"

	"github.com/hashicorp/go-multierror"
)

// DBProviderGroup is the Fx group tag collecting all DBProvider implementations.
const DBProviderGroup = "db_providers"

// ResolverParams defines the dependencies for NewConnectionResolver.
type ResolverParams struct {
	fx.In
	Config    *config.Config
	Providers []database.DBProvider `group:"db_providers"`
}

// connectionResolver routes a configured connection name to the provider
// matching its declared type.
type connectionResolver struct {
	cfg       *config.Config
	providers map[string]database.DBProvider
}

// NewConnectionResolver creates a resolver over all registered providers.
func NewConnectionResolver(params ResolverParams) database.ConnectionResolver {
	providers := make(map[string]database.DBProvider, len(params.Providers))
	for _, p := range params.Providers {
		providers[p.Type()] = p
	}
	return &connectionResolver{cfg: params.Config, providers: providers}
}

// Resolve looks up the named configuration, determines its type and delegates
// to the matching provider.
func (r *connectionResolver) Resolve(name string) (database.DBConnection, error) {
	rawConfig, ok := r.cfg.Uplink.Databases[name]
	if !ok {
		return nil, exception.Newf("database", "database configuration '%s' not found", name)
	}

	var dbConfig dbconfig.DatabaseConfig
	if err := mapstructure.Decode(rawConfig, &dbConfig); err != nil {
		return nil, exception.Newf("database", "failed to decode database config for '%s'", name, err)
	}

	provider, ok := r.providers[dbConfig.Type]
	if !ok {
		return nil, exception.Newf("database", "no provider registered for database type '%s' (connection '%s')", dbConfig.Type, name)
	}

	return provider.GetConnection(name)
}

// CloseAll closes every connection across all providers.
func (r *connectionResolver) CloseAll() error {
	var result *multierror.Error
	for _, p := range r.providers {
		if err := p.CloseAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
