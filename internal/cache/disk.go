package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore is the persistent cache tier. Each entry is one JSON file.
type DiskStore struct {
	dir string
	now func() time.Time // injectable for tests
}

// NewDiskStore creates a new disk tier rooted at dir
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{
		dir: dir,
		now: time.Now,
	}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a non-expired value from the disk tier
func (s *DiskStore) Get(key string) ([]byte, bool) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if s.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value with ttl in seconds
func (s *DiskStore) Set(key string, value []byte, ttl int64) error {
	entry := diskEntry{
		Data:      value,
		ExpiresAt: s.now().Add(time.Duration(ttl) * time.Second),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes a value from the disk tier
func (s *DiskStore) Delete(key string) error {
	return os.Remove(s.path(key))
}

// Clear removes all cached files
func (s *DiskStore) Clear() error {
	return os.RemoveAll(s.dir)
}

// EvictExpired deletes all entries past their expiry and returns the count
func (s *DiskStore) EvictExpired() (int, error) {
	evicted := 0
	err := s.walk(func(path string, entry diskEntry) {
		if s.now().After(entry.ExpiresAt) {
			if os.Remove(path) == nil {
				evicted++
			}
		}
	})
	return evicted, err
}

// Stats returns the total and expired entry counts plus on-disk size
func (s *DiskStore) Stats() (total, expired int, bytes int64, err error) {
	err = s.walk(func(path string, entry diskEntry) {
		total++
		if s.now().After(entry.ExpiresAt) {
			expired++
		}
		if info, statErr := os.Stat(path); statErr == nil {
			bytes += info.Size()
		}
	})
	return total, expired, bytes, err
}

// walk visits every readable entry file in the cache directory
func (s *DiskStore) walk(fn func(path string, entry diskEntry)) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".cache") {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry diskEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			// Unreadable entries are junk, drop them
			_ = os.Remove(path)
			continue
		}
		fn(path, entry)
	}

	return nil
}

// path generates the file path for a cache key
func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, sanitizeKey(key)+".cache")
}

func sanitizeKey(key string) string {
	return strings.NewReplacer(":", "_", "/", "_").Replace(key)
}
