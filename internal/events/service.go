package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/workpoint-hq/webhook-svc/internal/logging"
	"github.com/workpoint-hq/webhook-svc/internal/messaging"
	"github.com/workpoint-hq/webhook-svc/internal/metrics"
)

// Service is the producer-facing API for publishing domain events. It wraps
// the payload in an Envelope and forwards it to the queue publisher.
//
// Publish failures are logged and returned, never swallowed: call sites that
// must not fail their primary operation (the dominant case) catch and log
// the error themselves; call sites that want hard failure propagate it.
type Service struct {
	pub    messaging.Publisher
	logger *slog.Logger
}

// NewService creates an event Service publishing through pub.
func NewService(pub messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{pub: pub, logger: logger}
}

// Send wraps payload in an Envelope and publishes it to the webhook queue.
func (s *Service) Send(ctx context.Context, eventType string, payload any) error {
	env, err := NewEnvelope(eventType, payload)
	if err != nil {
		s.logger.Error("failed to build event envelope", logging.EventType(eventType), logging.Error(err))
		return err
	}

	data, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("failed to serialize event envelope", logging.EventType(eventType), logging.Error(err))
		return fmt.Errorf("serialize envelope for %s: %w", eventType, err)
	}

	if err := s.pub.Publish(ctx, messaging.SubjectWebhookEvents, data); err != nil {
		metrics.PublishErrors.WithLabelValues(eventType).Inc()
		s.logger.Error("failed to publish event", logging.EventType(eventType), logging.Error(err))
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	metrics.EventsPublished.WithLabelValues(eventType).Inc()
	s.logger.Info("event published", logging.EventType(eventType))
	return nil
}
