package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/citewatch/citewatch/internal/model"
)

// CacheEntry is the persisted verification record
type CacheEntry struct {
	QueryHash string                   `json:"query_hash"`
	QueryType model.QueryType          `json:"query_type"`
	Result    model.VerificationResult `json:"result"`
	CreatedAt time.Time                `json:"created_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// CacheStats is the operator-visible view of the cache
type CacheStats struct {
	TotalEntries   int   `json:"total_entries"`
	ExpiredEntries int   `json:"expired_entries"`
	DiskBytes      int64 `json:"disk_bytes"`
}

// VerificationCache stores scored verification results keyed by a
// normalized query fingerprint, with a TTL tier per query type: DOI
// lookups live 7 days, searches 1 hour. Backed by a memory tier for hot
// reads and a disk tier that survives restarts.
type VerificationCache struct {
	memory    Store
	disk      *DiskStore
	doiTTL    time.Duration
	searchTTL time.Duration
	now       func() time.Time
}

// NewVerificationCache creates a cache rooted at dir with the given TTLs
func NewVerificationCache(dir string, doiTTL, searchTTL, memoryTTL time.Duration) *VerificationCache {
	if doiTTL <= 0 {
		doiTTL = 7 * 24 * time.Hour
	}
	if searchTTL <= 0 {
		searchTTL = time.Hour
	}
	if memoryTTL <= 0 {
		memoryTTL = 10 * time.Minute
	}

	return &VerificationCache{
		memory:    NewMemoryStore(memoryTTL, 10*time.Minute),
		disk:      NewDiskStore(dir),
		doiTTL:    doiTTL,
		searchTTL: searchTTL,
		now:       time.Now,
	}
}

// Get looks up a non-expired result for the query. The returned result
// carries FromCache = true.
func (c *VerificationCache) Get(query model.VerificationQuery) (*model.VerificationResult, bool) {
	key := Fingerprint(query)

	data, found := c.memory.Get(key)
	if !found {
		data, found = c.disk.Get(key)
		if found {
			// Promote to the memory tier for subsequent reads
			_ = c.memory.Set(key, data, 0)
		}
	}
	if !found {
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	// The tiers expire entries themselves, but re-check here so a stale
	// memory copy can never outlive the entry's own expiry
	if c.now().After(entry.ExpiresAt) {
		_ = c.memory.Delete(key)
		_ = c.disk.Delete(key)
		return nil, false
	}

	result := entry.Result
	result.FromCache = true
	return &result, true
}

// Put upserts the result for the query; last write wins on conflict
func (c *VerificationCache) Put(query model.VerificationQuery, result model.VerificationResult, queryType model.QueryType) error {
	ttl := c.searchTTL
	if queryType == model.QueryTypeDOI {
		ttl = c.doiTTL
	}

	key := Fingerprint(query)
	entry := CacheEntry{
		QueryHash: key,
		QueryType: queryType,
		Result:    result,
		CreatedAt: c.now(),
		ExpiresAt: c.now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	ttlSeconds := int64(ttl / time.Second)
	if err := c.memory.Set(key, data, ttlSeconds); err != nil {
		return err
	}
	return c.disk.Set(key, data, ttlSeconds)
}

// EvictExpired removes all expired disk entries; run at startup
func (c *VerificationCache) EvictExpired() (int, error) {
	return c.disk.EvictExpired()
}

// Clear wipes both tiers and returns how many entries were removed
func (c *VerificationCache) Clear() (int, error) {
	total, _, _, err := c.disk.Stats()
	if err != nil {
		return 0, err
	}
	if err := c.memory.Clear(); err != nil {
		return 0, err
	}
	if err := c.disk.Clear(); err != nil {
		return 0, err
	}
	return total, nil
}

// Stats reports entry counts and on-disk size for operator visibility
func (c *VerificationCache) Stats() (CacheStats, error) {
	total, expired, bytes, err := c.disk.Stats()
	if err != nil {
		return CacheStats{}, err
	}
	return CacheStats{
		TotalEntries:   total,
		ExpiredEntries: expired,
		DiskBytes:      bytes,
	}, nil
}
