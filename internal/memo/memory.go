package memo

import "sync"

// MemoryStore is the transient backend: a process-lifetime key to value
// table, discarded with the owning model.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key][]byte)}
}

func (s *MemoryStore) Get(key Key) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(key Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[key] = stored
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[Key][]byte)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Location() string { return "" }
