// Package registry stores webhook subscriptions: which URLs receive which
// event types. The dispatcher only reads active-by-event-type snapshots;
// the management API owns all writes.
package registry

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("subscription not found")
)

// Subscription maps an event type to a destination URL. Deactivated
// subscriptions are excluded from dispatch but kept for history.
type Subscription struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	EventType string    `json:"eventType"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the persistence contract for subscriptions.
type Repository interface {
	GetAll(ctx context.Context) ([]Subscription, error)
	GetByID(ctx context.Context, id string) (*Subscription, error)

	// GetActiveByEventType returns active subscriptions whose event type
	// exactly equals eventType, in unspecified order. An empty result is
	// not an error.
	GetActiveByEventType(ctx context.Context, eventType string) ([]Subscription, error)

	Add(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error
}
