// Package config defines the configuration of a single named storage
// connection, decoded from the uplink.storage map.
package config

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type"`             // Storage backend: "local" or "gcs".
	BucketName      string `yaml:"bucket_name"`      // Default bucket name for operations.
	CredentialsFile string `yaml:"credentials_file"` // Service account key path for GCS.
	BaseDir         string `yaml:"base_dir"`         // Base directory for local file system operations.
}
