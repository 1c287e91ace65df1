package session

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/recruitment-crm/internal/domain"
)

// MemoryStore keeps sessions in process memory. Sessions idle longer than
// timeout are dropped lazily when new sessions are created.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	timeout  time.Duration
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(timeout time.Duration) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session), timeout: timeout}
}

func (m *MemoryStore) Create(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timeout > 0 {
		for id, existing := range m.sessions {
			if existing.Expired(s.CreatedAt, m.timeout) {
				delete(m.sessions, id)
			}
		}
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Touch(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.LastSeenAt = at
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
