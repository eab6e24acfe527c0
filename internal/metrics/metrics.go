package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Publish-side metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpoint_webhook_events_published_total",
			Help: "Total number of events published to the queue",
		},
		[]string{"event_type"},
	)

	PublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpoint_webhook_publish_errors_total",
			Help: "Total number of failed event publish attempts",
		},
		[]string{"event_type"},
	)

	// Consume-side metrics
	MessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workpoint_webhook_messages_consumed_total",
			Help: "Total number of queue messages handed to the dispatcher",
		},
	)

	MessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workpoint_webhook_messages_dropped_total",
			Help: "Total number of queue messages dropped without dispatch",
		},
	)

	// Delivery metrics
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workpoint_webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts by outcome",
		},
		[]string{"format", "outcome"},
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workpoint_webhook_delivery_duration_seconds",
			Help:    "Duration of webhook HTTP deliveries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
