package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpoint-hq/webhook-svc/internal/events"
	"github.com/workpoint-hq/webhook-svc/internal/registry"
)

type sentEvent struct {
	eventType string
	payload   any
}

type fakeSender struct {
	sent []sentEvent
	err  error
}

func (f *fakeSender) Send(_ context.Context, eventType string, payload any) error {
	f.sent = append(f.sent, sentEvent{eventType: eventType, payload: payload})
	return f.err
}

func newTestHandler() (*Handler, *registry.InMemoryRepository, *fakeSender) {
	repo := registry.NewInMemoryRepository()
	sender := &fakeSender{}
	h := New(repo, sender, slog.New(slog.DiscardHandler))
	return h, repo, sender
}

func doJSON(t *testing.T, h http.HandlerFunc, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := doJSON(t, h.Health, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestReady(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := doJSON(t, h.Ready, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateSubscription(t *testing.T) {
	h, repo, _ := newTestHandler()

	rr := doJSON(t, h.Subscriptions, http.MethodPost, "/api/v1/subscriptions", map[string]string{
		"url":       "https://example.com/hooks",
		"eventType": events.TypeBookingCreated,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created registry.Subscription
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "https://example.com/hooks", created.URL)
	assert.Equal(t, events.TypeBookingCreated, created.EventType)
	assert.True(t, created.IsActive)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.URL, stored.URL)
}

func TestCreateSubscription_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing url", map[string]string{"eventType": events.TypeBookingCreated}},
		{"bad scheme", map[string]string{"url": "ftp://example.com", "eventType": events.TypeBookingCreated}},
		{"not a url", map[string]string{"url": "not a url", "eventType": events.TypeBookingCreated}},
		{"missing event type", map[string]string{"url": "https://example.com/hooks"}},
		{"unknown event type", map[string]string{"url": "https://example.com/hooks", "eventType": "booking.deleted"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo, sender := newTestHandler()

			rr := doJSON(t, h.Subscriptions, http.MethodPost, "/api/v1/subscriptions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)

			subs, err := repo.GetAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, subs)

			// Rejections surface as validation.failed events.
			require.Len(t, sender.sent, 1)
			assert.Equal(t, events.TypeValidationFailed, sender.sent[0].eventType)
		})
	}
}

func TestCreateSubscription_InvalidJSON(t *testing.T) {
	h, _, sender := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewReader([]byte("{broken")))
	rr := httptest.NewRecorder()
	h.Subscriptions(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, sender.sent)
}

func TestListSubscriptions(t *testing.T) {
	h, repo, _ := newTestHandler()

	require.NoError(t, repo.Add(context.Background(), &registry.Subscription{
		ID:        uuid.New().String(),
		URL:       "https://example.com/hooks",
		EventType: events.TypeBookingCreated,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}))

	rr := doJSON(t, h.Subscriptions, http.MethodGet, "/api/v1/subscriptions", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var subs []registry.Subscription
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &subs))
	assert.Len(t, subs, 1)
}

func TestGetSubscription(t *testing.T) {
	h, repo, _ := newTestHandler()

	sub := &registry.Subscription{
		ID:        uuid.New().String(),
		URL:       "https://example.com/hooks",
		EventType: events.TypeBookingUpdated,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Add(context.Background(), sub))

	rr := doJSON(t, h.Subscriptions, http.MethodGet, "/api/v1/subscriptions/"+sub.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got registry.Subscription
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, sub.ID, got.ID)
}

func TestGetSubscription_NotFound(t *testing.T) {
	h, _, sender := newTestHandler()

	rr := doJSON(t, h.Subscriptions, http.MethodGet, "/api/v1/subscriptions/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Misses surface as resource.not_found events.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, events.TypeResourceNotFound, sender.sent[0].eventType)
}

func TestUpdateSubscription(t *testing.T) {
	h, repo, _ := newTestHandler()

	sub := &registry.Subscription{
		ID:        uuid.New().String(),
		URL:       "https://example.com/hooks",
		EventType: events.TypeBookingCreated,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Add(context.Background(), sub))

	rr := doJSON(t, h.Subscriptions, http.MethodPut, "/api/v1/subscriptions/"+sub.ID, map[string]any{
		"url":       "https://example.com/hooks/v2",
		"eventType": events.TypeBookingCancelled,
		"isActive":  false,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	stored, err := repo.GetByID(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hooks/v2", stored.URL)
	assert.Equal(t, events.TypeBookingCancelled, stored.EventType)
	assert.False(t, stored.IsActive)
	assert.True(t, stored.CreatedAt.Equal(sub.CreatedAt))
}

func TestUpdateSubscription_NotFound(t *testing.T) {
	h, _, sender := newTestHandler()

	rr := doJSON(t, h.Subscriptions, http.MethodPut, "/api/v1/subscriptions/"+uuid.New().String(), map[string]any{
		"url":       "https://example.com/hooks",
		"eventType": events.TypeBookingCreated,
		"isActive":  true,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, events.TypeResourceNotFound, sender.sent[0].eventType)
}

func TestDeleteSubscription(t *testing.T) {
	h, repo, _ := newTestHandler()

	sub := &registry.Subscription{
		ID:        uuid.New().String(),
		URL:       "https://example.com/hooks",
		EventType: events.TypeBookingCreated,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Add(context.Background(), sub))

	rr := doJSON(t, h.Subscriptions, http.MethodDelete, "/api/v1/subscriptions/"+sub.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err := repo.GetByID(context.Background(), sub.ID)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestSubscriptions_MethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := doJSON(t, h.Subscriptions, http.MethodDelete, "/api/v1/subscriptions", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = doJSON(t, h.Subscriptions, http.MethodPost, "/api/v1/subscriptions/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestPublishEvent(t *testing.T) {
	h, _, sender := newTestHandler()

	rr := doJSON(t, h.Events, http.MethodPost, "/api/v1/events", map[string]any{
		"eventType": events.TypeBookingCreated,
		"payload":   map[string]string{"bookingId": "b-1"},
	})
	require.Equal(t, http.StatusAccepted, rr.Code)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, events.TypeBookingCreated, sender.sent[0].eventType)
}

func TestPublishEvent_EmptyPayload(t *testing.T) {
	h, _, sender := newTestHandler()

	rr := doJSON(t, h.Events, http.MethodPost, "/api/v1/events", map[string]any{
		"eventType": events.TypeBookingCancelled,
	})
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, sender.sent, 1)
}

func TestPublishEvent_Validation(t *testing.T) {
	h, _, sender := newTestHandler()

	rr := doJSON(t, h.Events, http.MethodPost, "/api/v1/events", map[string]any{
		"payload": map[string]string{"x": "y"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, h.Events, http.MethodPost, "/api/v1/events", map[string]any{
		"eventType": "booking.deleted",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Empty(t, sender.sent)
}

func TestPublishEvent_BrokerFailure(t *testing.T) {
	h, _, sender := newTestHandler()
	sender.err = errors.New("broker down")

	rr := doJSON(t, h.Events, http.MethodPost, "/api/v1/events", map[string]any{
		"eventType": events.TypeBookingCreated,
		"payload":   map[string]string{"bookingId": "b-1"},
	})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestPublishEvent_MethodNotAllowed(t *testing.T) {
	h, _, _ := newTestHandler()

	rr := doJSON(t, h.Events, http.MethodGet, "/api/v1/events", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
