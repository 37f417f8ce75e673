package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore keeps audit entries in memory for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// List returns a page of entries for a tenant, newest first.
func (s *InMemoryStore) List(_ context.Context, tenantID uuid.UUID, offset, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].TenantID == tenantID {
			matched = append(matched, s.entries[i])
		}
	}
	if offset >= len(matched) {
		return []Entry{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return append([]Entry{}, matched[offset:end]...), nil
}

// All returns every recorded entry, for test assertions.
func (s *InMemoryStore) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries...)
}
