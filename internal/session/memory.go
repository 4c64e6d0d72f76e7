package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Used when Redis is not configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[sessionID][key]
	if !ok {
		return "", nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.sessions[sessionID], key)
		return "", nil
	}
	return entry.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.sessions[sessionID]
	if !ok {
		values = make(map[string]memoryEntry)
		m.sessions[sessionID] = values
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	values[key] = entry
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions[sessionID], key)
	if len(m.sessions[sessionID]) == 0 {
		delete(m.sessions, sessionID)
	}
	return nil
}

// Sweep drops expired values and empty sessions, returning how many values were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for sessionID, values := range m.sessions {
		for key, entry := range values {
			if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
				delete(values, key)
				dropped++
			}
		}
		if len(values) == 0 {
			delete(m.sessions, sessionID)
		}
	}
	return dropped
}

// Len returns the number of sessions holding at least one value.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

var _ Store = (*MemoryStore)(nil)
