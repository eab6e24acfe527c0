package registry

import (
	"context"
	"sync"
)

// InMemoryRepository keeps subscriptions in a mutex-guarded map. Used when
// no database is configured, and in tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{subs: make(map[string]*Subscription)}
}

func (r *InMemoryRepository) GetAll(_ context.Context) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subscription, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, *s)
	}
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *InMemoryRepository) GetActiveByEventType(_ context.Context, eventType string) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Subscription
	for _, s := range r.subs {
		if s.IsActive && s.EventType == eventType {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Add(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, sub *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[sub.ID]; !ok {
		return ErrNotFound
	}
	copied := *sub
	r.subs[sub.ID] = &copied
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return ErrNotFound
	}
	delete(r.subs, id)
	return nil
}
