package store

import (
	"context"
	"sync"

	"github.com/layer-3/persona/ports"
)

// MemoryStore is an in-memory implementation of the Store interface,
// suitable for tests and single-instance deployments
type MemoryStore struct {
	sessions map[string]map[string]string
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.Store {
	return &MemoryStore{
		sessions: make(map[string]map[string]string),
	}
}

// Get retrieves a value for a session key
func (s *MemoryStore) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return "", false, nil
	}
	value, ok := session[key]
	return value, ok, nil
}

// Set stores a value for a session key, creating the session on first use
func (s *MemoryStore) Set(ctx context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		session = make(map[string]string)
		s.sessions[sessionID] = session
	}
	session[key] = value
	return nil
}

// Delete removes a session key; empty sessions are dropped entirely
func (s *MemoryStore) Delete(ctx context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(session, key)
	if len(session) == 0 {
		delete(s.sessions, sessionID)
	}
	return nil
}
