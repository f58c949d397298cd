package cache

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/citewatch/citewatch/internal/model"
)

// Store defines the interface for a cache tier
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl int64) error
	Delete(key string) error
	Clear() error
}

// Fingerprint computes the normalized cache key for a verification query:
// lower-cased title, sorted lower-cased authors, normalized DOI and year,
// hashed with xxhash64. Structurally equal queries share a key.
func Fingerprint(q model.VerificationQuery) string {
	authors := make([]string, len(q.Authors))
	for i, a := range q.Authors {
		authors[i] = strings.ToLower(strings.TrimSpace(a))
	}
	sort.Strings(authors)

	parts := []string{
		strings.ToLower(strings.TrimSpace(q.DOI)),
		strings.ToLower(strings.TrimSpace(q.Title)),
		strings.Join(authors, ","),
		strconv.Itoa(q.Year),
		strings.ToLower(strings.TrimSpace(q.URL)),
	}

	sum := xxhash.Sum64String(strings.Join(parts, "|"))
	return "citewatch:v1:" + strconv.FormatUint(sum, 16)
}
