package lease

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	owner   string
	expires time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory returns a process-local Store.
func NewMemory() Store {
	return &memoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *memoryStore) Acquire(_ context.Context, key, owner string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && e.owner != owner && now.Before(e.expires) {
		return ErrHeld
	}
	m.entries[key] = entry{owner: owner, expires: now.Add(ttl)}
	return nil
}

func (m *memoryStore) Renew(_ context.Context, key, owner string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || e.owner != owner || !now.Before(e.expires) {
		return ErrNotHeld
	}
	m.entries[key] = entry{owner: owner, expires: now.Add(ttl)}
	return nil
}

func (m *memoryStore) Release(_ context.Context, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && e.owner == owner {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryStore) Close() error {
	return nil
}
