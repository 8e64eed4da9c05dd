// Package config provides structures and utilities for managing the uplink's
// configuration, loaded from an embedded YAML file with environment-variable
// overrides.
package config

// EmbeddedConfig holds the content of the configuration file, typically passed
// from main.go via go:embed.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g. "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// PollConfig controls the ingestion loop cadence.
type PollConfig struct {
	// IntervalSeconds is the fixed sleep between ingestion cycles.
	IntervalSeconds int `yaml:"interval_seconds"`
}

// StationConfig is the static station metadata stamped onto every aggregate.
type StationConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ProgressConfig selects the database connection backing the progress store.
type ProgressConfig struct {
	// DBRef is the name of the database connection holding processing_status.
	DBRef string `yaml:"db_ref"`
}

// SourceConfig describes one raw data source to poll.
type SourceConfig struct {
	// Name identifies the source. For "sql" sources it doubles as the
	// source_id in the progress store; for "files" sources each discovered
	// file name is its own source_id.
	Name string `yaml:"name"`
	// Type is the adapter kind: "sql" or "files".
	Type string `yaml:"type"`
	// DBRef is the database connection holding the raw table ("sql" only).
	DBRef string `yaml:"db_ref"`
	// Table is the raw observation table name ("sql" only).
	Table string `yaml:"table"`
	// StorageRef is the storage connection serving the files ("files" only).
	StorageRef string `yaml:"storage_ref"`
	// Bucket is the storage bucket or base directory ("files" only).
	Bucket string `yaml:"bucket"`
	// Prefix narrows the object listing ("files" only).
	Prefix string `yaml:"prefix"`
	// Suffix filters listed objects by name suffix; defaults to ".txt".
	Suffix string `yaml:"suffix"`
}

// DeliveryConfig configures the upload of aggregate batches to the remote
// ingestion API.
type DeliveryConfig struct {
	// Endpoint is the ingestion API URL. Empty disables delivery.
	Endpoint string `yaml:"endpoint"`
	// APIKey, when set, is sent as the X-API-Key header.
	APIKey string `yaml:"api_key"`
	// Headers are additional static request headers.
	Headers map[string]string `yaml:"headers"`
	// TimeoutSeconds bounds a single upload request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ArchiveConfig configures the optional parquet mirror of delivered batches.
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	StorageRef string `yaml:"storage_ref"`
	Bucket     string `yaml:"bucket"`
	BaseDir    string `yaml:"base_dir"`
}

// OutputConfig configures the durable CSV artifacts.
type OutputConfig struct {
	// CSVDir is the directory receiving the append-only CSV artifacts.
	CSVDir string `yaml:"csv_dir"`
	// Archive is the optional parquet mirror.
	Archive ArchiveConfig `yaml:"archive"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	// ListenAddr is the address of the /metrics listener. Empty disables it.
	ListenAddr string `yaml:"listen_addr"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Empty keeps
	// tracing as a no-op.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// UplinkConfig holds all configuration under the "uplink" top-level key.
type UplinkConfig struct {
	System   SystemConfig   `yaml:"system"`
	Poll     PollConfig     `yaml:"poll"`
	Station  StationConfig  `yaml:"station"`
	Progress ProgressConfig `yaml:"progress"`
	Sources  []SourceConfig `yaml:"sources"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	// Databases holds named database connection configs, decoded lazily by
	// the database providers.
	Databases map[string]interface{} `yaml:"database"`
	// Storages holds named storage connection configs, decoded lazily by the
	// storage providers.
	Storages map[string]interface{} `yaml:"storage"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Uplink UplinkConfig `yaml:"uplink"`
}

// NewConfig returns a new Config populated with default values. The station
// defaults match the Fidas instrument deployment the uplink was built for.
func NewConfig() *Config {
	return &Config{
		Uplink: UplinkConfig{
			System: SystemConfig{
				Logging: LoggingConfig{Level: "INFO"},
			},
			Poll: PollConfig{
				IntervalSeconds: 60,
			},
			Station: StationConfig{
				Name:      "Fidas Station (ACCESS)",
				Latitude:  24.5254,
				Longitude: 54.4319,
			},
			Progress: ProgressConfig{
				DBRef: "metadata",
			},
			Delivery: DeliveryConfig{
				TimeoutSeconds: 30,
			},
			Output: OutputConfig{
				CSVDir: "data/csv",
			},
			Databases: map[string]interface{}{},
			Storages:  map[string]interface{}{},
		},
	}
}
