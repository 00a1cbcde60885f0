package storage

import "sync"

// SessionStore persists per-user preferences and the vision result cache.
//
// Implementations must be safe for concurrent access from multiple
// simultaneous conversations; writes to the same user are last-write-wins
// and users never interfere with each other.
type SessionStore interface {
	// GetLanguage returns the user's stored language code, or "" when the
	// user has never completed language selection.
	GetLanguage(telegramID int64) (string, error)
	// SetLanguage creates or overwrites the user's language preference.
	SetLanguage(telegramID int64, code string) error

	// GetVisionCache returns the cached product name for an image hash, or
	// "" when there is no entry.
	GetVisionCache(imageHash string) (string, error)
	// SetVisionCache stores a vision analysis result.
	SetVisionCache(imageHash string, productName string) error

	Close() error
}

// MemoryStore is the default in-process SessionStore. No eviction, no size
// bound, no persistence: state lives for the process lifetime.
type MemoryStore struct {
	mu          sync.RWMutex
	languages   map[int64]string
	visionCache map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		languages:   make(map[int64]string),
		visionCache: make(map[string]string),
	}
}

func (s *MemoryStore) GetLanguage(telegramID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.languages[telegramID], nil
}

func (s *MemoryStore) SetLanguage(telegramID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages[telegramID] = code
	return nil
}

func (s *MemoryStore) GetVisionCache(imageHash string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visionCache[imageHash], nil
}

func (s *MemoryStore) SetVisionCache(imageHash string, productName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visionCache[imageHash] = productName
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
