package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyuad-access/fidas-uplink/internal/config"
)

const testYAML = `
uplink:
  system:
    logging:
      level: DEBUG
  poll:
    interval_seconds: 120
  station:
    name: "Test Station"
  sources:
    - name: dustmonitor-files
      type: files
      storage_ref: landing
      prefix: DUSTMONITOR_
  delivery:
    endpoint: https://ingest.example.com/v1/upload
    api_key: secret
  database:
    metadata:
      type: sqlite
      database: ":memory:"
  storage:
    landing:
      type: local
      base_dir: /tmp/landing
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig("uplink: {}"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Uplink.System.Logging.Level)
	assert.Equal(t, 60, cfg.Uplink.Poll.IntervalSeconds)
	assert.Equal(t, "Fidas Station (ACCESS)", cfg.Uplink.Station.Name)
	assert.InDelta(t, 24.5254, cfg.Uplink.Station.Latitude, 1e-9)
	assert.Equal(t, "metadata", cfg.Uplink.Progress.DBRef)
	assert.Equal(t, 30, cfg.Uplink.Delivery.TimeoutSeconds)
	assert.Equal(t, "data/csv", cfg.Uplink.Output.CSVDir)
	assert.Empty(t, cfg.Uplink.Delivery.Endpoint)
}

func TestLoadConfigMergesEmbeddedYAML(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Uplink.System.Logging.Level)
	assert.Equal(t, 120, cfg.Uplink.Poll.IntervalSeconds)
	assert.Equal(t, "Test Station", cfg.Uplink.Station.Name)
	// Values the YAML does not mention keep their defaults.
	assert.InDelta(t, 54.4319, cfg.Uplink.Station.Longitude, 1e-9)
	assert.Equal(t, 30, cfg.Uplink.Delivery.TimeoutSeconds)

	require.Len(t, cfg.Uplink.Sources, 1)
	assert.Equal(t, "dustmonitor-files", cfg.Uplink.Sources[0].Name)
	assert.Equal(t, "files", cfg.Uplink.Sources[0].Type)

	assert.Equal(t, "https://ingest.example.com/v1/upload", cfg.Uplink.Delivery.Endpoint)
	assert.Contains(t, cfg.Uplink.Databases, "metadata")
	assert.Contains(t, cfg.Uplink.Storages, "landing")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("UPLINK_POLL_INTERVAL_SECONDS", "15")
	t.Setenv("UPLINK_DELIVERY_API_KEY", "env-secret")
	t.Setenv("UPLINK_STATION_LATITUDE", "25.1")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(testYAML))
	require.NoError(t, err)

	// Environment wins over both defaults and the embedded YAML.
	assert.Equal(t, 15, cfg.Uplink.Poll.IntervalSeconds)
	assert.Equal(t, "env-secret", cfg.Uplink.Delivery.APIKey)
	assert.InDelta(t, 25.1, cfg.Uplink.Station.Latitude, 1e-9)
	assert.Equal(t, "DEBUG", cfg.Uplink.System.Logging.Level)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("uplink: [not a map"))
	assert.Error(t, err)
}
