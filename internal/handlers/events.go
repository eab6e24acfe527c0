package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/workpoint-hq/webhook-svc/internal/events"
)

// publishEventRequest is the body for POST /api/v1/events. Payload is kept
// raw so whatever document the caller sends is forwarded verbatim.
type publishEventRequest struct {
	EventType string          `json:"eventType"`
	Payload   json.RawMessage `json:"payload"`
}

// Events handles POST /api/v1/events: wrap the payload in an envelope and
// publish it to the webhook queue. Unlike the error-event call sites this is
// a hard-failure path: if the broker rejects the publish the caller gets a
// 502 so it knows the event was lost.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req publishEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "eventType is required")
		return
	}
	if !events.IsRecognizedType(req.EventType) {
		writeError(w, http.StatusBadRequest, "validation_error", "unrecognized eventType")
		return
	}
	if len(req.Payload) == 0 {
		req.Payload = json.RawMessage("{}")
	}

	if err := h.events.Send(r.Context(), req.EventType, req.Payload); err != nil {
		writeError(w, http.StatusBadGateway, "publish_failed", "failed to publish event")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "accepted",
		"eventType": req.EventType,
	})
}
