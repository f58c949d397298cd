package cache

import (
	"testing"
	"time"

	"github.com/citewatch/citewatch/internal/model"
)

func TestFingerprint_OrderAndCaseInsensitive(t *testing.T) {
	a := model.VerificationQuery{
		Title:   "Attention Is All You Need",
		Authors: []string{"Vaswani", "Shazeer"},
		Year:    2017,
	}
	b := model.VerificationQuery{
		Title:   "attention is all you need",
		Authors: []string{"shazeer", "VASWANI"},
		Year:    2017,
	}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Expected structurally equal queries to share a fingerprint")
	}
}

func TestFingerprint_DistinctQueries(t *testing.T) {
	a := model.VerificationQuery{Title: "Attention Is All You Need", Year: 2017}
	b := model.VerificationQuery{Title: "Attention Is All You Need", Year: 2018}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("Expected queries differing in year to have different fingerprints")
	}
}

func TestVerificationCache_PutGet(t *testing.T) {
	c := NewVerificationCache(t.TempDir(), 0, 0, 0)
	query := model.VerificationQuery{DOI: "10.1038/nature12373"}
	result := model.VerificationResult{
		Status:     model.StatusVerified,
		Confidence: 1.0,
		Source:     "crossref",
	}

	if err := c.Put(query, result, model.QueryTypeDOI); err != nil {
		t.Fatalf("Expected no error on put, got %v", err)
	}

	cached, found := c.Get(query)
	if !found {
		t.Fatal("Expected cache hit")
	}
	if !cached.FromCache {
		t.Error("Expected cached result to carry FromCache")
	}
	if cached.Status != model.StatusVerified || cached.Confidence != 1.0 {
		t.Errorf("Expected cached result to preserve fields, got %s %f", cached.Status, cached.Confidence)
	}
}

func TestVerificationCache_Miss(t *testing.T) {
	c := NewVerificationCache(t.TempDir(), 0, 0, 0)
	if _, found := c.Get(model.VerificationQuery{DOI: "10.9999/never.stored"}); found {
		t.Error("Expected cache miss for unseen query")
	}
}

func TestVerificationCache_SearchEntryExpiresAfterOneHour(t *testing.T) {
	c := NewVerificationCache(t.TempDir(), 0, 0, 0)
	query := model.VerificationQuery{Title: "Some Paper"}
	result := model.VerificationResult{Status: model.StatusPartial, Confidence: 0.5}

	if err := c.Put(query, result, model.QueryTypeSearch); err != nil {
		t.Fatalf("Expected no error on put, got %v", err)
	}

	if _, found := c.Get(query); !found {
		t.Fatal("Expected fresh search entry to hit")
	}

	// Jump past the search TTL but within the DOI TTL
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, found := c.Get(query); found {
		t.Error("Expected search entry to expire after an hour")
	}
}

func TestVerificationCache_DOIEntryOutlivesSearchTTL(t *testing.T) {
	c := NewVerificationCache(t.TempDir(), 0, 0, 0)
	query := model.VerificationQuery{DOI: "10.1038/nature12373"}
	result := model.VerificationResult{Status: model.StatusVerified, Confidence: 1.0}

	if err := c.Put(query, result, model.QueryTypeDOI); err != nil {
		t.Fatalf("Expected no error on put, got %v", err)
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, found := c.Get(query); !found {
		t.Error("Expected DOI entry to survive 2 hours")
	}

	c.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	if _, found := c.Get(query); found {
		t.Error("Expected DOI entry to expire after 7 days")
	}
}

func TestVerificationCache_DiskTierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	query := model.VerificationQuery{DOI: "10.1038/nature12373"}
	result := model.VerificationResult{Status: model.StatusVerified, Confidence: 1.0}

	first := NewVerificationCache(dir, 0, 0, 0)
	if err := first.Put(query, result, model.QueryTypeDOI); err != nil {
		t.Fatalf("Expected no error on put, got %v", err)
	}

	// A fresh cache over the same directory simulates a restart
	second := NewVerificationCache(dir, 0, 0, 0)
	cached, found := second.Get(query)
	if !found {
		t.Fatal("Expected disk tier to serve the entry after restart")
	}
	if cached.Status != model.StatusVerified {
		t.Errorf("Expected status verified, got %s", cached.Status)
	}
}

func TestVerificationCache_Clear(t *testing.T) {
	c := NewVerificationCache(t.TempDir(), 0, 0, 0)
	for _, doi := range []string{"10.1/a", "10.1/b", "10.1/c"} {
		query := model.VerificationQuery{DOI: doi}
		if err := c.Put(query, model.VerificationResult{Status: model.StatusVerified}, model.QueryTypeDOI); err != nil {
			t.Fatalf("Expected no error on put, got %v", err)
		}
	}

	cleared, err := c.Clear()
	if err != nil {
		t.Fatalf("Expected no error on clear, got %v", err)
	}
	if cleared != 3 {
		t.Errorf("Expected 3 cleared entries, got %d", cleared)
	}

	if _, found := c.Get(model.VerificationQuery{DOI: "10.1/a"}); found {
		t.Error("Expected no hits after clear")
	}
}

func TestVerificationCache_EvictExpired(t *testing.T) {
	dir := t.TempDir()
	c := NewVerificationCache(dir, 0, 0, 0)

	if err := c.Put(model.VerificationQuery{Title: "Old Search"}, model.VerificationResult{}, model.QueryTypeSearch); err != nil {
		t.Fatalf("Expected no error on put, got %v", err)
	}
	if err := c.Put(model.VerificationQuery{DOI: "10.1038/fresh"}, model.VerificationResult{}, model.QueryTypeDOI); err != nil {
		t.Fatalf("Expected no error on put, got %v", err)
	}

	// Move the disk tier's clock past the search TTL
	c.disk.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	evicted, err := c.EvictExpired()
	if err != nil {
		t.Fatalf("Expected no error on evict, got %v", err)
	}
	if evicted != 1 {
		t.Errorf("Expected 1 evicted entry, got %d", evicted)
	}

	stats, err := c.Stats()
	if err != nil {
		t.Fatalf("Expected no error on stats, got %v", err)
	}
	if stats.TotalEntries != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", stats.TotalEntries)
	}
}
