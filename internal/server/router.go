// Package server provides HTTP server setup for the webhook service.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/workpoint-hq/webhook-svc/internal/handlers"
	"github.com/workpoint-hq/webhook-svc/internal/middleware"
)

// NewRouter constructs a ServeMux with the management API routes registered.
func NewRouter(h *handlers.Handler, recovery func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Subscription management
	mux.HandleFunc("/api/v1/subscriptions", h.Subscriptions)
	mux.HandleFunc("/api/v1/subscriptions/", h.Subscriptions)

	// Event publication
	mux.HandleFunc("/api/v1/events", h.Events)

	return middleware.RequestID(recovery(mux))
}
