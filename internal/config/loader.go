package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go.uber.org/fx"

	"github.com/nyuad-access/fidas-uplink/internal/support/exception"
	"github.com/nyuad-access/fidas-uplink/internal/support/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
}

// LoadConfig loads configuration in three layers: compiled-in defaults, the
// embedded YAML file, then environment-variable overrides derived from the
// yaml tags (e.g. UPLINK_POLL_INTERVAL_SECONDS). It is expected to be called
// once during startup.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Debugf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	var yamlConfig Config
	if err := yaml.Unmarshal(embeddedConfig, &yamlConfig); err != nil {
		return nil, exception.New(moduleName, "failed to unmarshal embedded config", err, false)
	}

	mergeConfig(cfg, &yamlConfig)

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.New(moduleName, "failed to load config from environment variables", err, false)
	}
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config and
// sets the global log level from the loaded configuration.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Uplink.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Uplink.System.Logging.Level)

	return cfg, nil
}

// mergeConfig performs a deep merge of source into dest. Non-zero values in
// source overwrite the corresponding defaults in dest.
func mergeConfig(dest, source *Config) {
	d, s := &dest.Uplink, &source.Uplink

	if s.System.Logging.Level != "" {
		d.System.Logging.Level = s.System.Logging.Level
	}
	if s.Poll.IntervalSeconds != 0 {
		d.Poll.IntervalSeconds = s.Poll.IntervalSeconds
	}
	if s.Station.Name != "" {
		d.Station.Name = s.Station.Name
	}
	if s.Station.Latitude != 0 {
		d.Station.Latitude = s.Station.Latitude
	}
	if s.Station.Longitude != 0 {
		d.Station.Longitude = s.Station.Longitude
	}
	if s.Progress.DBRef != "" {
		d.Progress.DBRef = s.Progress.DBRef
	}
	if s.Sources != nil {
		d.Sources = s.Sources
	}
	mergeDeliveryConfig(&d.Delivery, &s.Delivery)
	mergeOutputConfig(&d.Output, &s.Output)
	if s.Metrics.ListenAddr != "" {
		d.Metrics.ListenAddr = s.Metrics.ListenAddr
	}
	if s.Tracing.OTLPEndpoint != "" {
		d.Tracing.OTLPEndpoint = s.Tracing.OTLPEndpoint
	}

	if s.Databases != nil {
		if d.Databases == nil {
			d.Databases = make(map[string]interface{})
		}
		for key, value := range s.Databases {
			d.Databases[key] = value
		}
	}
	if s.Storages != nil {
		if d.Storages == nil {
			d.Storages = make(map[string]interface{})
		}
		for key, value := range s.Storages {
			d.Storages[key] = value
		}
	}
}

// mergeDeliveryConfig merges source into dest.
func mergeDeliveryConfig(dest, source *DeliveryConfig) {
	if source.Endpoint != "" {
		dest.Endpoint = source.Endpoint
	}
	if source.APIKey != "" {
		dest.APIKey = source.APIKey
	}
	if source.Headers != nil {
		dest.Headers = source.Headers
	}
	if source.TimeoutSeconds != 0 {
		dest.TimeoutSeconds = source.TimeoutSeconds
	}
}

// mergeOutputConfig merges source into dest.
func mergeOutputConfig(dest, source *OutputConfig) {
	if source.CSVDir != "" {
		dest.CSVDir = source.CSVDir
	}
	if source.Archive.Enabled {
		dest.Archive.Enabled = true
	}
	if source.Archive.StorageRef != "" {
		dest.Archive.StorageRef = source.Archive.StorageRef
	}
	if source.Archive.Bucket != "" {
		dest.Archive.Bucket = source.Archive.Bucket
	}
	if source.Archive.BaseDir != "" {
		dest.Archive.BaseDir = source.Archive.BaseDir
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from
// environment variables, using the yaml tag to build the variable name.
// Slices and the named adapter maps are YAML-only and skipped here.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}

		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
