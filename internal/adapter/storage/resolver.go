package storage

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/hashicorp/go-multierror"

	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// StorageProviderGroup is the Fx group tag collecting all StorageProvider
// implementations.
const StorageProviderGroup = "storage_providers"

// ResolverParams defines the dependencies for NewConnectionResolver.
type ResolverParams struct {
	fx.In
	Config    *config.Config
	Providers []StorageProvider `group:"storage_providers"`
}

// connectionResolver routes a configured storage name to the provider
// matching its declared type.
type connectionResolver struct {
	cfg       *config.Config
	providers map[string]StorageProvider
}

// NewConnectionResolver creates a resolver over all registered providers.
func NewConnectionResolver(params ResolverParams) ConnectionResolver {
	providers := make(map[string]StorageProvider, len(params.Providers))
	for _, p := range params.Providers {
		providers[p.Type()] = p
	}
	return &connectionResolver{cfg: params.Config, providers: providers}
}

// Resolve looks up the named configuration, determines its backend type and
// delegates to the matching provider.
func (r *connectionResolver) Resolve(name string) (StorageConnection, error) {
	storageCfg, err := DecodeStorageConfig(r.cfg, name)
	if err != nil {
		return nil, err
	}

	provider, ok := r.providers[storageCfg.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider found for type '%s' (connection '%s')", storageCfg.Type, name)
	}

	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage connection '%s' from provider '%s': %w", name, storageCfg.Type, err)
	}
	return conn, nil
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
