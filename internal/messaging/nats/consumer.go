package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/workpoint-hq/webhook-svc/internal/logging"
	"github.com/workpoint-hq/webhook-svc/internal/messaging"
)

// ConsumerConfig defines the durable consumer draining the queue.
type ConsumerConfig struct {
	// Name is the durable consumer name.
	Name string

	// AckWait is the time to wait for acknowledgment before redelivery.
	AckWait time.Duration

	// MaxAckPending is the maximum number of unacknowledged messages in
	// flight. 1 gives strict one-at-a-time processing.
	MaxAckPending int
}

// DefaultConsumerConfig returns the dispatcher's consumer settings.
func DefaultConsumerConfig(name string) ConsumerConfig {
	return ConsumerConfig{
		Name:          name,
		AckWait:       30 * time.Second,
		MaxAckPending: 1,
	}
}

// Consumer drains a durable stream and invokes a handler per message with
// explicit acknowledgment. A handler error terminates the message (dropped,
// not redelivered); a nil return acknowledges it exactly once. Message
// receipt is callback-driven; Start returns immediately after registering
// the callback.
type Consumer struct {
	cfg      Config
	stream   StreamConfig
	consumer ConsumerConfig
	handler  messaging.MessageHandler
	logger   *slog.Logger

	conn   *nats.Conn
	cons   jetstream.ConsumeContext
	cancel context.CancelFunc
}

// NewConsumer creates a Consumer. Call Start to connect and begin draining.
func NewConsumer(cfg Config, stream StreamConfig, consumer ConsumerConfig, handler messaging.MessageHandler, logger *slog.Logger) *Consumer {
	return &Consumer{
		cfg:      cfg,
		stream:   stream,
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start connects to the broker, declares the stream and durable consumer
// (both idempotent), and registers the message callback. A failure here is
// terminal for this consumer instance; the caller decides whether the
// process keeps running without dispatch.
func (c *Consumer) Start(ctx context.Context) error {
	conn, err := connect(c.cfg)
	if err != nil {
		return err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, c.stream.jetstream())
	if err != nil {
		conn.Close()
		return fmt.Errorf("declare stream %s: %w", c.stream.Name, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          c.consumer.Name,
		Durable:       c.consumer.Name,
		AckWait:       c.consumer.AckWait,
		MaxAckPending: c.consumer.MaxAckPending,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("declare consumer %s: %w", c.consumer.Name, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	cc, err := cons.Consume(func(msg jetstream.Msg) {
		m := &messaging.Message{
			Subject:   msg.Subject(),
			Data:      msg.Data(),
			Timestamp: time.Now().UTC(),
		}
		if headers := msg.Headers(); headers != nil {
			m.Metadata = make(map[string]string)
			for k := range headers {
				m.Metadata[k] = headers.Get(k)
			}
		}

		if err := c.handler(consumeCtx, m); err != nil {
			c.logger.Error("dropping message", "subject", m.Subject, logging.Error(err))
			_ = msg.Term()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		cancel()
		conn.Close()
		return fmt.Errorf("start consuming: %w", err)
	}

	c.conn = conn
	c.cons = cc
	c.cancel = cancel

	c.logger.Info("consuming webhook events",
		"stream", c.stream.Name, "consumer", c.consumer.Name)
	return nil
}

// Stop cancels in-flight handling and releases the broker connection.
// Safe to call when Start failed or was never called.
func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	if c.cons != nil {
		c.cons.Stop()
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
