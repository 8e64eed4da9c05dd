// Package config defines the configuration of a single named database
// connection, decoded from the uplink.database map.
package config

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
}

// DatabaseConfig describes one database connection.
type DatabaseConfig struct {
	// Type selects the driver: "postgres", "mysql" or "sqlite".
	Type     string `yaml:"type" mapstructure:"type"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	// Database is the database name, or the file path for sqlite.
	Database string     `yaml:"database" mapstructure:"database"`
	Sslmode  string     `yaml:"sslmode" mapstructure:"sslmode"`
	Pool     PoolConfig `yaml:"pool" mapstructure:"pool"`
}
