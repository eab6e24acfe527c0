// Package dispatcher drains the webhook queue and fans each event out to
// the registered subscriber URLs.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/workpoint-hq/webhook-svc/internal/events"
	"github.com/workpoint-hq/webhook-svc/internal/logging"
	"github.com/workpoint-hq/webhook-svc/internal/messaging"
	"github.com/workpoint-hq/webhook-svc/internal/metrics"
	"github.com/workpoint-hq/webhook-svc/internal/notification"
	"github.com/workpoint-hq/webhook-svc/internal/registry"
)

// DefaultDeliveryTimeout bounds each subscriber POST so a stuck endpoint
// cannot block shutdown or the rest of the fan-out.
const DefaultDeliveryTimeout = 10 * time.Second

// Lookup is the slice of the subscription registry the dispatcher consumes.
type Lookup interface {
	GetActiveByEventType(ctx context.Context, eventType string) ([]registry.Subscription, error)
}

// Dispatcher handles one queue message at a time: decode the envelope,
// resolve subscribers, render a per-destination payload and POST it.
// Per-subscriber failures are logged and isolated; they never fail the
// message.
type Dispatcher struct {
	lookup  Lookup
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Dispatcher. timeout bounds each individual delivery; zero
// means DefaultDeliveryTimeout.
func New(lookup Lookup, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	return &Dispatcher{
		lookup:  lookup,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// HandleMessage runs one dispatch cycle. A returned error means the message
// is unprocessable and must be dropped (the consumer terminates it); nil
// means the message was handed to the fan-out once and can be acknowledged,
// regardless of how many subscriber deliveries failed.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg *messaging.Message) error {
	metrics.MessagesConsumed.Inc()

	var env events.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		metrics.MessagesDropped.Inc()
		d.logger.Error("malformed envelope on queue", logging.Error(err))
		return fmt.Errorf("decode envelope: %w", err)
	}

	d.logger.Info("message received", logging.EventType(env.EventType))

	subs, err := d.lookup.GetActiveByEventType(ctx, env.EventType)
	if err != nil {
		metrics.MessagesDropped.Inc()
		d.logger.Error("subscription lookup failed", logging.EventType(env.EventType), logging.Error(err))
		return fmt.Errorf("lookup subscriptions for %s: %w", env.EventType, err)
	}

	if len(subs) == 0 {
		d.logger.Info("no subscriptions for event", logging.EventType(env.EventType))
		return nil
	}

	for _, sub := range subs {
		d.deliver(ctx, env, sub)
	}
	return nil
}

// deliver renders and POSTs the event to a single subscriber, logging the
// outcome. It never returns an error: failures here are this subscriber's
// problem only.
func (d *Dispatcher) deliver(ctx context.Context, env events.Envelope, sub registry.Subscription) {
	format := notification.FormatFor(sub.URL)

	body, err := notification.Render(env, format)
	if err != nil {
		metrics.Deliveries.WithLabelValues(format.String(), "failure").Inc()
		d.logger.Error("failed to render payload",
			logging.EventType(env.EventType), logging.SubscriptionID(sub.ID), logging.URL(sub.URL), logging.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	status, err := d.post(ctx, sub.URL, body)
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.Deliveries.WithLabelValues(format.String(), "failure").Inc()
		d.logger.Error("webhook delivery failed",
			logging.EventType(env.EventType), logging.SubscriptionID(sub.ID), logging.URL(sub.URL), logging.Error(err))
		return
	}

	if status < 200 || status >= 300 {
		metrics.Deliveries.WithLabelValues(format.String(), "failure").Inc()
		d.logger.Warn("webhook delivery rejected",
			logging.EventType(env.EventType), logging.SubscriptionID(sub.ID), logging.URL(sub.URL), logging.Status(status))
		return
	}

	metrics.Deliveries.WithLabelValues(format.String(), "success").Inc()
	d.logger.Info("webhook delivered",
		logging.EventType(env.EventType), logging.SubscriptionID(sub.ID), logging.URL(sub.URL), logging.Status(status))
}

func (d *Dispatcher) post(ctx context.Context, url string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Workpoint-Webhook/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
