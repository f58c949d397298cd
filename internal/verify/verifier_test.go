package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citewatch/citewatch/internal/cache"
	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/worker"
)

func newTestCache(t *testing.T) *cache.VerificationCache {
	t.Helper()
	return cache.NewVerificationCache(t.TempDir(), 7*24*time.Hour, time.Hour, 10*time.Minute)
}

// fakeProvider is a scripted bibliographic provider for tests
type fakeProvider struct {
	name        string
	records     map[string]*model.BibRecord // keyed by normalized DOI
	searchHits  []model.BibRecord
	lookupErr   error
	searchErr   error
	lookupCalls int
	searchCalls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) LookupDOI(ctx context.Context, doi string) (*model.BibRecord, error) {
	f.lookupCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if record, ok := f.records[NormalizeDOI(doi)]; ok {
		return record, nil
	}
	return nil, ErrNotFound
}

func (f *fakeProvider) Search(ctx context.Context, query model.VerificationQuery) ([]model.BibRecord, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.searchHits) == 0 {
		return nil, ErrNotFound
	}
	return f.searchHits, nil
}

func fastLimiter() *worker.Limiter {
	return worker.NewLimiter(10000, 10000)
}

func TestVerifier_DOIMatch(t *testing.T) {
	provider := &fakeProvider{
		name: "crossref",
		records: map[string]*model.BibRecord{
			"10.1038/nature12373": {
				DOI:   "10.1038/nature12373",
				Title: "Nanometre-scale thermometry in a living cell",
			},
		},
	}
	v := NewVerifier([]Provider{provider}, fastLimiter(), nil)

	result := v.Verify(context.Background(), model.VerificationQuery{DOI: "https://doi.org/10.1038/NATURE12373"})

	if result.Status != model.StatusVerified {
		t.Errorf("Expected status verified, got %s", result.Status)
	}
	if result.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", result.Confidence)
	}
	if result.Source != "crossref" {
		t.Errorf("Expected source crossref, got %s", result.Source)
	}
	if result.MatchedData == nil {
		t.Fatal("Expected matched data to be set")
	}
}

func TestVerifier_DOIFallsBackToSecondProvider(t *testing.T) {
	first := &fakeProvider{name: "crossref"}
	second := &fakeProvider{
		name: "openalex",
		records: map[string]*model.BibRecord{
			"10.1038/nature12373": {DOI: "10.1038/nature12373", Title: "Some Title"},
		},
	}
	v := NewVerifier([]Provider{first, second}, fastLimiter(), nil)

	result := v.Verify(context.Background(), model.VerificationQuery{DOI: "10.1038/nature12373"})

	if result.Status != model.StatusVerified {
		t.Errorf("Expected status verified from second provider, got %s", result.Status)
	}
	if result.Source != "openalex" {
		t.Errorf("Expected source openalex, got %s", result.Source)
	}
	if first.lookupCalls != 1 {
		t.Errorf("Expected first provider to be consulted once, got %d", first.lookupCalls)
	}
}

func TestVerifier_SearchShortCircuit(t *testing.T) {
	query := model.VerificationQuery{
		Title: "Attention Is All You Need",
		Year:  2017,
	}
	first := &fakeProvider{
		name:       "crossref",
		searchHits: []model.BibRecord{{Title: "Attention Is All You Need", Year: 2017}},
	}
	second := &fakeProvider{name: "openalex"}
	v := NewVerifier([]Provider{first, second}, fastLimiter(), nil)

	result := v.Verify(context.Background(), query)

	if result.Status != model.StatusVerified {
		t.Errorf("Expected status verified, got %s", result.Status)
	}
	if second.searchCalls != 0 {
		t.Errorf("Expected confident first-provider match to skip second provider, got %d calls", second.searchCalls)
	}
}

func TestVerifier_SearchKeepsHigherScore(t *testing.T) {
	query := model.VerificationQuery{
		Title: "Deep Residual Learning for Image Recognition",
		Year:  2016,
	}
	// First provider returns a weak candidate, below the short-circuit
	// threshold; second returns an exact title match
	first := &fakeProvider{
		name:       "crossref",
		searchHits: []model.BibRecord{{Title: "Residual Networks Survey", Year: 2019}},
	}
	second := &fakeProvider{
		name:       "openalex",
		searchHits: []model.BibRecord{{Title: "Deep Residual Learning for Image Recognition", Year: 2016}},
	}
	v := NewVerifier([]Provider{first, second}, fastLimiter(), nil)

	result := v.Verify(context.Background(), query)

	if result.Source != "openalex" {
		t.Errorf("Expected the higher-scoring provider to win, got source %s", result.Source)
	}
	if second.searchCalls != 1 {
		t.Errorf("Expected second provider to be searched, got %d calls", second.searchCalls)
	}
}

func TestVerifier_EmptyQuery(t *testing.T) {
	v := NewVerifier(nil, fastLimiter(), nil)
	result := v.Verify(context.Background(), model.VerificationQuery{})

	if result.Status != model.StatusUnverified {
		t.Errorf("Expected status unverified for empty query, got %s", result.Status)
	}
}

func TestVerifier_ProviderErrorBecomesErrorStatus(t *testing.T) {
	provider := &fakeProvider{
		name:      "crossref",
		lookupErr: errors.New("connection refused"),
		searchErr: errors.New("connection refused"),
	}
	v := NewVerifier([]Provider{provider}, fastLimiter(), nil)

	result := v.Verify(context.Background(), model.VerificationQuery{
		DOI:   "10.1038/nature12373",
		Title: "Nanometre-scale thermometry",
	})

	if result.Status != model.StatusError {
		t.Errorf("Expected status error, got %s", result.Status)
	}
	if result.Error == "" {
		t.Error("Expected error message to be set")
	}
}

func TestVerifier_NotFoundIsUnverified(t *testing.T) {
	provider := &fakeProvider{name: "crossref"}
	v := NewVerifier([]Provider{provider}, fastLimiter(), nil)

	result := v.Verify(context.Background(), model.VerificationQuery{
		DOI:   "10.9999/unknown.doi",
		Title: "A Title Nobody Indexed",
	})

	if result.Status != model.StatusUnverified {
		t.Errorf("Expected status unverified for not-found, got %s", result.Status)
	}
	if result.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %f", result.Confidence)
	}
}

func TestVerifier_VerifyManyIsolatesFailures(t *testing.T) {
	provider := &fakeProvider{
		name: "crossref",
		records: map[string]*model.BibRecord{
			"10.1038/nature12373": {DOI: "10.1038/nature12373"},
		},
	}
	v := NewVerifier([]Provider{provider}, fastLimiter(), nil)

	queries := []model.VerificationQuery{
		{DOI: "10.1038/nature12373"},
		{}, // empty, stays unverified
		{DOI: "10.9999/unknown", Title: "Unknown Work"},
	}
	results := v.VerifyMany(context.Background(), queries)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Status != model.StatusVerified {
		t.Errorf("Expected first result verified, got %s", results[0].Status)
	}
	if results[1].Status != model.StatusUnverified {
		t.Errorf("Expected second result unverified, got %s", results[1].Status)
	}
	if results[2].Status != model.StatusUnverified {
		t.Errorf("Expected third result unverified, got %s", results[2].Status)
	}
}

func TestVerifier_CachedResultOnSecondCall(t *testing.T) {
	provider := &fakeProvider{
		name: "crossref",
		records: map[string]*model.BibRecord{
			"10.1038/nature12373": {DOI: "10.1038/nature12373"},
		},
	}
	vc := newTestCache(t)
	v := NewVerifier([]Provider{provider}, fastLimiter(), vc)

	query := model.VerificationQuery{DOI: "10.1038/nature12373"}

	first := v.Verify(context.Background(), query)
	if first.FromCache {
		t.Error("Expected first verification to miss the cache")
	}

	second := v.Verify(context.Background(), query)
	if !second.FromCache {
		t.Error("Expected second verification to hit the cache")
	}
	if provider.lookupCalls != 1 {
		t.Errorf("Expected exactly one provider lookup, got %d", provider.lookupCalls)
	}
	if second.Status != model.StatusVerified || second.Confidence != 1.0 {
		t.Errorf("Expected cached result to preserve status and confidence, got %s %f", second.Status, second.Confidence)
	}
}
