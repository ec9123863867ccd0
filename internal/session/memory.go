package session

import (
	"context"
	"sync"

	"github.com/ashureev/proxybot/internal/domain"
)

// MemoryStore implements Store with an in-process map. Suitable for
// single-node deployments; sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*domain.Session)}
}

// Get retrieves the session for an identity. Returns (nil, nil) when absent.
func (m *MemoryStore) Get(_ context.Context, identity string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[identity]
	if !ok {
		return nil, nil
	}
	// Copy out so callers cannot mutate the stored record in place.
	return s.Clone(), nil
}

// Set replaces the session for an identity.
func (m *MemoryStore) Set(_ context.Context, identity string, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[identity] = s.Clone()
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
