package kvstore

import "sync"

// MemoryProvider keeps every profile in process memory.
type MemoryProvider struct {
	mu       sync.RWMutex
	profiles map[string]map[string]string
}

// NewMemoryProvider creates an empty MemoryProvider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		profiles: make(map[string]map[string]string),
	}
}

// NewMemoryStore returns a standalone in-memory Store.
func NewMemoryStore() Store {
	return NewMemoryProvider().Profile("default")
}

// Profile returns the Store for profileID
func (p *MemoryProvider) Profile(profileID string) Store {
	return &memoryStore{provider: p, profileID: profileID}
}

type memoryStore struct {
	provider  *MemoryProvider
	profileID string
}

func (s *memoryStore) Get(key string) (string, bool, error) {
	s.provider.mu.RLock()
	defer s.provider.mu.RUnlock()

	value, ok := s.provider.profiles[s.profileID][key]
	return value, ok, nil
}

func (s *memoryStore) Set(key, value string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	entries, ok := s.provider.profiles[s.profileID]
	if !ok {
		entries = make(map[string]string)
		s.provider.profiles[s.profileID] = entries
	}
	entries[key] = value
	return nil
}

func (s *memoryStore) Remove(key string) error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()

	delete(s.provider.profiles[s.profileID], key)
	return nil
}
