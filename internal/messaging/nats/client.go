// Package nats provides the NATS JetStream implementation of the messaging
// contracts: a lazily connecting publisher and a durable queue consumer.
package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Config holds broker connection settings.
type Config struct {
	// Host is the broker hostname.
	Host string

	// Port is the broker client port.
	Port int

	// Username for authentication (optional for servers without auth).
	Username string

	// Password for authentication.
	Password string

	// Name is the client name for connection identification.
	Name string

	// MaxReconnects is the maximum number of reconnection attempts for an
	// established connection. Use -1 for infinite reconnects.
	MaxReconnects int

	// ReconnectWait is the time to wait between reconnection attempts.
	ReconnectWait time.Duration

	// Timeout is the connection timeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		Host:          "localhost",
		Port:          4222,
		Username:      "guest",
		Password:      "guest",
		Name:          "webhook-svc",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// URL renders the broker URL from host and port.
func (c Config) URL() string {
	return fmt.Sprintf("nats://%s:%d", c.Host, c.Port)
}

// StreamConfig defines the durable stream backing a queue subject.
type StreamConfig struct {
	// Name is the stream name.
	Name string

	// Subjects are the subjects this stream captures.
	Subjects []string

	// MaxAge is the maximum age of messages in the stream.
	MaxAge time.Duration

	// MaxMsgs is the maximum number of messages retained.
	MaxMsgs int64
}

// DefaultStreamConfig returns the stream settings for the webhook event
// queue: durable file storage, work-queue retention so each message is
// delivered once.
func DefaultStreamConfig(name string, subjects []string) StreamConfig {
	return StreamConfig{
		Name:     name,
		Subjects: subjects,
		MaxAge:   24 * time.Hour,
		MaxMsgs:  1000000,
	}
}

func connect(cfg Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}

	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL(), opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to broker at %s: %w", cfg.URL(), err)
	}
	return conn, nil
}

func (s StreamConfig) jetstream() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:      s.Name,
		Subjects:  s.Subjects,
		MaxAge:    s.MaxAge,
		MaxMsgs:   s.MaxMsgs,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	}
}
