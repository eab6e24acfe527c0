// Package handlers implements the HTTP management surface: subscription
// CRUD and the event publication endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/workpoint-hq/webhook-svc/internal/logging"
	"github.com/workpoint-hq/webhook-svc/internal/registry"
)

// EventSender is the producer-facing slice of the event service.
type EventSender interface {
	Send(ctx context.Context, eventType string, payload any) error
}

// Handler serves the management API.
type Handler struct {
	repo   registry.Repository
	events EventSender
	logger *slog.Logger
}

// New creates a Handler.
func New(repo registry.Repository, events EventSender, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, events: events, logger: logger}
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /readyz.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.repo.GetAll(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "subscription store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"type":    errType,
			"message": message,
		},
	})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

// reportError best-effort publishes an API error as a domain event,
// mirroring how the booking API surfaces its failures to subscribers.
// Publish errors are logged and never propagated to the HTTP response.
func (h *Handler) reportError(ctx context.Context, eventType, errType, message, endpoint string, status int) {
	if h.events == nil {
		return
	}
	payload := map[string]any{
		"errorType":  errType,
		"message":    message,
		"endpoint":   endpoint,
		"statusCode": status,
	}
	if err := h.events.Send(ctx, eventType, payload); err != nil {
		h.logger.Error("failed to publish error event", logging.EventType(eventType), logging.Error(err))
	}
}
