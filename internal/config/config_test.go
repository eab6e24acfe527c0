package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8087, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "localhost", cfg.Broker.Host)
	assert.Equal(t, 4222, cfg.Broker.Port)
	assert.Equal(t, "guest", cfg.Broker.Username)
	assert.Equal(t, "guest", cfg.Broker.Password)

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)

	assert.Equal(t, 10*time.Second, cfg.Dispatcher.DeliveryTimeout)
	assert.Equal(t, 1, cfg.Dispatcher.MaxInFlight)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	content := `
server:
  port: 9090
broker:
  host: broker.internal
  port: 4223
database:
  driver: postgres
  postgres:
    host: db.internal
    database: webhooks
dispatcher:
  delivery_timeout: 30s
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "broker.internal", cfg.Broker.Host)
	assert.Equal(t, 4223, cfg.Broker.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "webhooks", cfg.Database.Postgres.Database)
	assert.Equal(t, 30*time.Second, cfg.Dispatcher.DeliveryTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	// Unset values keep their defaults.
	assert.Equal(t, "guest", cfg.Broker.Username)
	assert.Equal(t, 1, cfg.Dispatcher.MaxInFlight)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WEBHOOK_BROKER_HOST", "broker.example.com")
	t.Setenv("WEBHOOK_BROKER_PASSWORD", "s3cret")
	t.Setenv("WEBHOOK_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "broker.example.com", cfg.Broker.Host)
	assert.Equal(t, "s3cret", cfg.Broker.Password)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestPostgresConfig_ConnString(t *testing.T) {
	p := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "webhook",
		Password: "pw",
		Database: "webhooks",
		SSLMode:  "require",
	}

	assert.Equal(t, "postgres://webhook:pw@db.internal:5433/webhooks?sslmode=require", p.ConnString())
}
