// Package messaging defines the broker-facing contracts for the webhook
// event pipeline. It keeps the event service and the dispatcher decoupled
// from the concrete NATS implementation.
package messaging

import (
	"context"
	"time"
)

// Subject and stream names for the webhook event queue. The subject literal
// must match exactly between publisher and consumer.
const (
	// SubjectWebhookEvents is the durable queue all domain events go through.
	SubjectWebhookEvents = "webhook.events"

	// StreamWebhookEvents is the JetStream stream capturing the subject.
	StreamWebhookEvents = "WEBHOOK_EVENTS"

	// ConsumerWebhookDispatcher is the durable consumer name used by the
	// background dispatcher.
	ConsumerWebhookDispatcher = "webhook-dispatcher"
)

// Message represents a message received from the queue.
type Message struct {
	// Subject is the subject the message was published to.
	Subject string

	// Data is the raw message payload.
	Data []byte

	// Metadata contains optional key-value pairs from message headers.
	Metadata map[string]string

	// Timestamp is when the message was received.
	Timestamp time.Time
}

// MessageHandler processes one delivered message. Returning nil acknowledges
// the message; returning an error drops it permanently (terminated, not
// redelivered). Per-destination delivery failures are the handler's own
// concern and must not surface here.
type MessageHandler func(ctx context.Context, msg *Message) error

// Publisher enqueues raw payloads onto a subject. Implementations connect
// lazily and must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}
