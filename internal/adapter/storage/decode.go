package storage

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	storageConfig "github.com/nyuad-access/fidas-uplink/internal/adapter/storage/config"
	"github.com/nyuad-access/fidas-uplink/internal/config"
)

// DecodeStorageConfig decodes the named entry of the uplink.storage map into
// a StorageConfig, honoring yaml tags.
func DecodeStorageConfig(cfg *config.Config, name string) (storageConfig.StorageConfig, error) {
	var storageCfg storageConfig.StorageConfig

	namedConfig, ok := cfg.Uplink.Storages[name]
	if !ok {
		return storageCfg, fmt.Errorf("storage configuration for name '%s' not found", name)
	}

	decoderConfig := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &storageCfg,
		TagName:  "yaml",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return storageCfg, fmt.Errorf("failed to create decoder for storage config '%s': %w", name, err)
	}
	if err := decoder.Decode(namedConfig); err != nil {
		return storageCfg, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}
	return storageCfg, nil
}
