package registration

import (
	"context"
	"sync"

	"github.com/maxschool-bot/internal/domain"
)

// SessionStore holds the ephemeral per-user flow state, keyed by platform
// ID. The in-memory implementation below is the production default; a
// durable cache can be slotted in without touching the protocol.
type SessionStore interface {
	// Get returns the user's session, creating the idle default on first
	// access.
	Get(ctx context.Context, platformID string) (*domain.Session, error)
	Put(ctx context.Context, platformID string, s *domain.Session) error
	// Reset returns the session to idle with an empty payload.
	Reset(ctx context.Context, platformID string) error
}

// MemorySessionStore keeps sessions in process memory. Sessions hold only
// in-flight registration state, never the authorization decision, so losing
// them on restart costs at most one in-progress attempt.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *MemorySessionStore) Get(_ context.Context, platformID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[platformID]
	if !ok {
		s = domain.NewSession()
		m.sessions[platformID] = s
	}
	return s, nil
}

func (m *MemorySessionStore) Put(_ context.Context, platformID string, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[platformID] = s
	return nil
}

func (m *MemorySessionStore) Reset(_ context.Context, platformID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[platformID] = domain.NewSession()
	return nil
}
