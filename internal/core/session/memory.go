package session

import (
	"context"
	"sync"

	"github.com/orderflow/orderflow/internal/core/ports"
)

// MemoryStorage keeps every browser scope in process memory. Values do not
// survive a restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	scopes map[string]map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{scopes: make(map[string]map[string]string)}
}

// Scope implements ports.SessionStorageFactory.
func (m *MemoryStorage) Scope(browserID string) ports.SessionStorage {
	return &memoryScope{parent: m, id: browserID}
}

type memoryScope struct {
	parent *MemoryStorage
	id     string
}

func (s *memoryScope) Get(_ context.Context, key string) (string, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	v, ok := s.parent.scopes[s.id][key]
	return v, ok, nil
}

func (s *memoryScope) Set(_ context.Context, key, value string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	scope, ok := s.parent.scopes[s.id]
	if !ok {
		scope = make(map[string]string)
		s.parent.scopes[s.id] = scope
	}
	scope[key] = value
	return nil
}

func (s *memoryScope) Delete(_ context.Context, key string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	scope := s.parent.scopes[s.id]
	delete(scope, key)
	if len(scope) == 0 {
		delete(s.parent.scopes, s.id)
	}
	return nil
}
