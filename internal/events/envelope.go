// Package events defines the domain event envelope and the producer-facing
// service that publishes events onto the webhook queue.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Recognized event types. The pipeline itself accepts any string; these are
// the producer contract, and the only values the subscription management
// surface allows.
const (
	TypeBookingCreated     = "booking.created"
	TypeBookingUpdated     = "booking.updated"
	TypeBookingCancelled   = "booking.cancelled"
	TypeErrorOccurred      = "error.occurred"
	TypeValidationFailed   = "validation.failed"
	TypeResourceNotFound   = "resource.not_found"
	TypeBusinessLogicError = "business.logic.error"
)

// Types lists all recognized event types.
var Types = []string{
	TypeBookingCreated,
	TypeBookingUpdated,
	TypeBookingCancelled,
	TypeErrorOccurred,
	TypeValidationFailed,
	TypeResourceNotFound,
	TypeBusinessLogicError,
}

// IsRecognizedType reports whether t is one of the recognized event types.
func IsRecognizedType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Envelope is the wire message placed on the queue. PayloadJSON carries the
// business payload as a fully serialized JSON document inside a string
// field; consumers deserialize it a second time. The double encoding is the
// wire contract, not an accident.
type Envelope struct {
	EventType   string    `json:"eventType"`
	PayloadJSON string    `json:"payloadJson"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewEnvelope wraps an arbitrary payload into an Envelope, stamping
// CreatedAt at construction time. EventType is not validated here.
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("serialize payload for %s: %w", eventType, err)
	}
	return Envelope{
		EventType:   eventType,
		PayloadJSON: string(data),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Payload deserializes the inner payload document.
func (e Envelope) Payload() (any, error) {
	var v any
	if err := json.Unmarshal([]byte(e.PayloadJSON), &v); err != nil {
		return nil, fmt.Errorf("deserialize payload: %w", err)
	}
	return v, nil
}
