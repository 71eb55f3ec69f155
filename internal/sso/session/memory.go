package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps flow secrets and sessions in process memory. Suitable
// for single-instance deployments and tests; use the Redis store when
// running more than one replica.
type MemoryStore struct {
	mu       sync.Mutex
	secrets  map[string]memoryEntry
	sessions map[string]Session
}

type memoryEntry struct {
	secret    []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		secrets:  make(map[string]memoryEntry),
		sessions: make(map[string]Session),
	}
}

func secretKey(flowID, providerID string) string {
	return flowID + ":" + providerID
}

func (m *MemoryStore) PutStateSecret(ctx context.Context, flowID, providerID string, secret []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Abandoned flows never hit TakeStateSecret, so sweep here to keep
	// init spam from growing the map without bound.
	if len(m.secrets) > 1024 {
		m.sweepSecretsLocked()
	}

	buf := make([]byte, len(secret))
	copy(buf, secret)
	m.secrets[secretKey(flowID, providerID)] = memoryEntry{
		secret:    buf,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *MemoryStore) TakeStateSecret(ctx context.Context, flowID, providerID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := secretKey(flowID, providerID)
	entry, ok := m.secrets[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.secrets, key)
	if time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	return entry.secret, nil
}

func (m *MemoryStore) sweepSecretsLocked() {
	now := time.Now()
	for key, entry := range m.secrets {
		if now.After(entry.expiresAt) {
			delete(m.secrets, key)
		}
	}
}

func (m *MemoryStore) CreateSession(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
