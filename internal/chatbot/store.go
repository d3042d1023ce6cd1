package chatbot

import (
	"context"
	"sync"
)

// SessionStore owns the lifetime of conversation state records. GetOrCreate
// must be atomic per key: concurrent first-contact events for the same chat
// identity see the same session.
type SessionStore interface {
	GetOrCreate(ctx context.Context, chatID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

// MemoryStore keeps sessions in a mutex-guarded map for the process lifetime.
// The durable profile mirror is the only thing that survives a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the session for chatID, creating it if absent.
func (m *MemoryStore) GetOrCreate(_ context.Context, chatID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		return s, nil
	}
	s := NewSession(chatID)
	m.sessions[chatID] = s
	return s, nil
}

// Save is a no-op: sessions are held by reference.
func (m *MemoryStore) Save(context.Context, *Session) error {
	return nil
}

var _ SessionStore = (*MemoryStore)(nil)
