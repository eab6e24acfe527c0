package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the webhook service
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Broker     BrokerConfig     `mapstructure:"broker"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// BrokerConfig holds message broker connection settings
type BrokerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DatabaseConfig holds subscription store configuration. Driver is either
// "memory" (default, no persistence) or "postgres".
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString builds a postgres connection URL.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// DispatcherConfig controls the background consumer
type DispatcherConfig struct {
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	MaxInFlight     int           `mapstructure:"max_in_flight"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8087)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")

	v.SetDefault("broker.host", "localhost")
	v.SetDefault("broker.port", 4222)
	v.SetDefault("broker.username", "guest")
	v.SetDefault("broker.password", "guest")

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "workpoint")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "workpoint_webhooks")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("dispatcher.delivery_timeout", "10s")
	v.SetDefault("dispatcher.max_in_flight", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config, e.g. WEBHOOK_BROKER_HOST
	v.SetEnvPrefix("WEBHOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
