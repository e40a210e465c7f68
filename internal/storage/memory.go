package storage

import "sync"

// MemoryStore holds sessions in memory for development and tests.
type MemoryStore struct {
	tokens map[int64]string
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens: make(map[int64]string),
	}
}

func (m *MemoryStore) SaveToken(telegramID int64, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[telegramID] = accessToken
	return nil
}

func (m *MemoryStore) GetToken(telegramID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	token, exists := m.tokens[telegramID]
	if !exists {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (m *MemoryStore) DeleteToken(telegramID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, telegramID)
	return nil
}
