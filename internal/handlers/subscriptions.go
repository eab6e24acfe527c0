package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workpoint-hq/webhook-svc/internal/events"
	"github.com/workpoint-hq/webhook-svc/internal/logging"
	"github.com/workpoint-hq/webhook-svc/internal/registry"
)

// createSubscriptionRequest is the body for POST /api/v1/subscriptions.
type createSubscriptionRequest struct {
	URL       string `json:"url"`
	EventType string `json:"eventType"`
}

// updateSubscriptionRequest is the body for PUT /api/v1/subscriptions/{id}.
// All fields are required; this is a full replace, not a patch.
type updateSubscriptionRequest struct {
	URL       string `json:"url"`
	EventType string `json:"eventType"`
	IsActive  bool   `json:"isActive"`
}

// Subscriptions routes /api/v1/subscriptions and /api/v1/subscriptions/{id}.
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/subscriptions")
	id = strings.Trim(id, "/")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.listSubscriptions(w, r)
		case http.MethodPost:
			h.createSubscription(w, r)
		default:
			h.methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getSubscription(w, r, id)
	case http.MethodPut:
		h.updateSubscription(w, r, id)
	case http.MethodDelete:
		h.deleteSubscription(w, r, id)
	default:
		h.methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *Handler) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.repo.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list subscriptions", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list subscriptions")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if msg := validateSubscription(req.URL, req.EventType); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		h.reportError(r.Context(), events.TypeValidationFailed,
			"ValidationError", msg, r.URL.Path, http.StatusBadRequest)
		return
	}

	sub := &registry.Subscription{
		ID:        uuid.New().String(),
		URL:       req.URL,
		EventType: req.EventType,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.Add(r.Context(), sub); err != nil {
		h.logger.Error("failed to create subscription", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create subscription")
		return
	}

	h.logger.Info("subscription created",
		logging.SubscriptionID(sub.ID), logging.EventType(sub.EventType), logging.URL(sub.URL))
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) getSubscription(w http.ResponseWriter, r *http.Request, id string) {
	sub, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.subscriptionNotFound(w, r, id)
			return
		}
		h.logger.Error("failed to get subscription", logging.SubscriptionID(id), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) updateSubscription(w http.ResponseWriter, r *http.Request, id string) {
	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if msg := validateSubscription(req.URL, req.EventType); msg != "" {
		writeError(w, http.StatusBadRequest, "validation_error", msg)
		h.reportError(r.Context(), events.TypeValidationFailed,
			"ValidationError", msg, r.URL.Path, http.StatusBadRequest)
		return
	}

	existing, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.subscriptionNotFound(w, r, id)
			return
		}
		h.logger.Error("failed to get subscription", logging.SubscriptionID(id), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update subscription")
		return
	}

	sub := &registry.Subscription{
		ID:        id,
		URL:       req.URL,
		EventType: req.EventType,
		IsActive:  req.IsActive,
		CreatedAt: existing.CreatedAt,
	}

	if err := h.repo.Update(r.Context(), sub); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.subscriptionNotFound(w, r, id)
			return
		}
		h.logger.Error("failed to update subscription", logging.SubscriptionID(id), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to update subscription")
		return
	}

	h.logger.Info("subscription updated", logging.SubscriptionID(id))
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) deleteSubscription(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.subscriptionNotFound(w, r, id)
			return
		}
		h.logger.Error("failed to delete subscription", logging.SubscriptionID(id), logging.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete subscription")
		return
	}

	h.logger.Info("subscription deleted", logging.SubscriptionID(id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) subscriptionNotFound(w http.ResponseWriter, r *http.Request, id string) {
	writeError(w, http.StatusNotFound, "not_found", "subscription not found")
	h.reportError(r.Context(), events.TypeResourceNotFound,
		"NotFoundError", "subscription "+id+" not found", r.URL.Path, http.StatusNotFound)
}

// validateSubscription returns a human-readable problem description, or ""
// when the fields are acceptable.
func validateSubscription(rawURL, eventType string) string {
	if rawURL == "" {
		return "url is required"
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "url must be a valid http or https URL"
	}
	if eventType == "" {
		return "eventType is required"
	}
	if !events.IsRecognizedType(eventType) {
		return "eventType must be one of: " + strings.Join(events.Types, ", ")
	}
	return ""
}
