package session

import (
	"context"
	"sync"
	"time"
)

// MemoryDedup keeps submission tokens in process memory until they expire.
type MemoryDedup struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewMemoryDedup(ttl time.Duration) *MemoryDedup {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemoryDedup{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

// FirstUse implements ports.SubmissionGuard.
func (m *MemoryDedup) FirstUse(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for t, exp := range m.seen {
		if !now.Before(exp) {
			delete(m.seen, t)
		}
	}
	if _, used := m.seen[token]; used {
		return false, nil
	}
	m.seen[token] = now.Add(m.ttl)
	return true, nil
}
