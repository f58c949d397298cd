package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is the in-process cache tier
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a new memory tier with the given default TTL
func NewMemoryStore(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the memory tier
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	if val, found := s.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value with ttl in seconds (0 uses the default TTL)
func (s *MemoryStore) Set(key string, value []byte, ttl int64) error {
	d := gocache.DefaultExpiration
	if ttl > 0 {
		d = time.Duration(ttl) * time.Second
	}
	s.cache.Set(key, value, d)
	return nil
}

// Delete removes a value from the memory tier
func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// Clear removes all values from the memory tier
func (s *MemoryStore) Clear() error {
	s.cache.Flush()
	return nil
}
