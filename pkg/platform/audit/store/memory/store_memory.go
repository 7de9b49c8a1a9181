package memory

import (
	"context"
	"sync"

	"agora/pkg/domain"
	audit "agora/pkg/platform/audit"
)

// InMemoryStore keeps the audit trail per principal. It backs tests and
// single-node deployments; the postgres store is its durable twin.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.Principal][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.Principal][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Principal] = append(s.events[event.Principal], event)
	return nil
}

func (s *InMemoryStore) ListByPrincipal(_ context.Context, p domain.Principal) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[p]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.Principal][]audit.Event)
}
