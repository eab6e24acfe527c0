package nats

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher enqueues messages onto a durable JetStream stream. The broker
// connection is established lazily on first publish and reused afterwards;
// the stream declaration is idempotent. Initialization is guarded by a
// mutex double-check so concurrent first publishers cannot open duplicate
// connections.
//
// The publisher performs no application-level retries: a broker failure
// surfaces to the caller, which decides how to react.
type Publisher struct {
	cfg    Config
	stream StreamConfig

	mu   sync.Mutex
	conn *nats.Conn
	js   jetstream.JetStream

	// dial establishes the broker connection and declares the stream.
	dial func(ctx context.Context) (*nats.Conn, jetstream.JetStream, error)
}

// NewPublisher creates a Publisher for the given broker and stream. No
// connection is made until the first Publish call.
func NewPublisher(cfg Config, stream StreamConfig) *Publisher {
	p := &Publisher{cfg: cfg, stream: stream}
	p.dial = p.dialBroker
	return p
}

// Publish writes data to the subject, connecting and declaring the stream
// first if needed.
func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	js, err := p.ensure(ctx)
	if err != nil {
		return err
	}
	if _, err := js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// ensure returns the JetStream context, establishing the connection and
// declaring the stream on first use.
func (p *Publisher) ensure(ctx context.Context) (jetstream.JetStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.js != nil {
		return p.js, nil
	}

	conn, js, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.conn = conn
	p.js = js
	return p.js, nil
}

func (p *Publisher) dialBroker(ctx context.Context) (*nats.Conn, jetstream.JetStream, error) {
	conn, err := connect(p.cfg)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, p.stream.jetstream()); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("declare stream %s: %w", p.stream.Name, err)
	}

	return conn, js, nil
}

// Close releases the broker connection if one was established.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
		p.js = nil
	}
	return nil
}
