package partner

import "sync"

// Store exposes partner retrieval for HTTP handlers and the AI service.
type Store interface {
	List() []Partner
	FindByID(id string) (Partner, bool)
	Add(p Partner)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Partner
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied partners.
func NewMemoryStore(items []Partner) *MemoryStore {
	return &MemoryStore{items: append([]Partner(nil), items...)}
}

// List returns the current partner list.
func (s *MemoryStore) List() []Partner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Partner(nil), s.items...)
}

// FindByID looks up a partner by identifier.
func (s *MemoryStore) FindByID(id string) (Partner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Partner{}, false
}

// Add appends a generated partner to the store.
func (s *MemoryStore) Add(p Partner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, p)
}
