package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/citewatch/citewatch/internal/cache"
	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/worker"
)

// searchThreshold is the confidence at which the first provider's best
// search candidate is accepted without consulting the second provider
const searchThreshold = 0.7

// Verifier executes a hybrid DOI-then-search strategy against two
// independent bibliographic databases and produces a scored outcome.
// Lookup failures never propagate as errors; they are folded into the
// result per the graceful-fallback policy.
type Verifier struct {
	providers []Provider
	limiter   *worker.Limiter
	cache     *cache.VerificationCache // nil disables caching
}

// NewVerifier creates a verifier. Providers are tried in order; each
// provider's calls go through its own rate-limiter bucket.
func NewVerifier(providers []Provider, limiter *worker.Limiter, vc *cache.VerificationCache) *Verifier {
	if limiter == nil {
		limiter = worker.NewLimiter(2, 5)
	}
	return &Verifier{
		providers: providers,
		limiter:   limiter,
		cache:     vc,
	}
}

// Verify verifies a single citation query. Always returns a best-effort
// result; it never panics or returns an error to the caller.
func (v *Verifier) Verify(ctx context.Context, query model.VerificationQuery) (result model.VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = model.VerificationResult{
				Status: model.StatusError,
				Error:  fmt.Sprintf("verification panic: %v", r),
			}
		}
	}()

	if query.IsEmpty() {
		return model.VerificationResult{
			Status: model.StatusUnverified,
			Error:  "query has no searchable fields",
		}
	}

	if v.cache != nil {
		if cached, ok := v.cache.Get(query); ok {
			return *cached
		}
	}

	var lastErr error

	// DOI-direct strategy. An invalid or unresolvable DOI falls through
	// to search rather than failing the whole verification.
	if query.DOI != "" && ValidDOI(query.DOI) {
		if res, err := v.verifyByDOI(ctx, query); err == nil {
			v.put(query, *res, model.QueryTypeDOI)
			return *res
		} else if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}

	// Search strategy needs at least one textual field
	if query.Title == "" && len(query.Authors) == 0 {
		return v.fallbackResult(lastErr)
	}

	res, err := v.verifyBySearch(ctx, query)
	if err != nil {
		lastErr = err
	}
	if res != nil {
		v.put(query, *res, model.QueryTypeSearch)
		return *res
	}

	return v.fallbackResult(lastErr)
}

// VerifyMany verifies queries one at a time, preserving per-service rate
// limiting. One query's error never aborts the batch.
func (v *Verifier) VerifyMany(ctx context.Context, queries []model.VerificationQuery) map[int]model.VerificationResult {
	results := make(map[int]model.VerificationResult, len(queries))
	for i, query := range queries {
		results[i] = v.Verify(ctx, query)
	}
	return results
}

// verifyByDOI attempts a direct DOI lookup against each provider in turn
func (v *Verifier) verifyByDOI(ctx context.Context, query model.VerificationQuery) (*model.VerificationResult, error) {
	var lastErr error = ErrNotFound

	for _, p := range v.providers {
		if err := v.limiter.Wait(ctx, p.Name()); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		record, err := p.LookupDOI(ctx, query.DOI)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				lastErr = fmt.Errorf("%s: %w", p.Name(), err)
			}
			continue
		}
		if !SameDOI(record.DOI, query.DOI) {
			continue
		}

		// Exact DOI agreement is conclusive
		return &model.VerificationResult{
			Status:      model.StatusVerified,
			Confidence:  1.0,
			Source:      p.Name(),
			MatchedData: record,
		}, nil
	}

	return nil, lastErr
}

// verifyBySearch queries provider A first, accepting its best candidate
// at the search threshold; otherwise it also queries provider B and
// keeps whichever result scored higher.
func (v *Verifier) verifyBySearch(ctx context.Context, query model.VerificationQuery) (*model.VerificationResult, error) {
	var best *model.VerificationResult
	var lastErr error

	for i, p := range v.providers {
		if err := v.limiter.Wait(ctx, p.Name()); err != nil {
			return best, fmt.Errorf("rate limit wait: %w", err)
		}

		records, err := p.Search(ctx, query)
		if err != nil && !errors.Is(err, ErrNotFound) {
			lastErr = fmt.Errorf("%s: %w", p.Name(), err)
			continue
		}

		candidate := bestCandidate(query, records, p.Name())
		if candidate != nil && (best == nil || candidate.Confidence > best.Confidence) {
			best = candidate
		}

		// First provider's confident match short-circuits the second
		if i == 0 && best != nil && best.Confidence >= searchThreshold {
			return best, nil
		}
	}

	if best == nil {
		return nil, lastErr
	}
	return best, nil
}

// bestCandidate scores each search candidate and returns the strongest
func bestCandidate(query model.VerificationQuery, records []model.BibRecord, source string) *model.VerificationResult {
	if len(records) == 0 {
		return nil
	}

	bestConfidence := -1.0
	var bestRecord model.BibRecord
	for _, record := range records {
		if c := MatchConfidence(query, &record); c > bestConfidence {
			bestConfidence = c
			bestRecord = record
		}
	}

	if bestConfidence <= 0 {
		return &model.VerificationResult{
			Status:     model.StatusUnverified,
			Confidence: 0,
			Source:     source,
		}
	}

	matched := bestRecord
	return &model.VerificationResult{
		Status:      StatusForConfidence(bestConfidence),
		Confidence:  bestConfidence,
		Source:      source,
		MatchedData: &matched,
	}
}

// fallbackResult distinguishes "nothing found" from "lookups failed"
func (v *Verifier) fallbackResult(lastErr error) model.VerificationResult {
	if lastErr != nil {
		return model.VerificationResult{
			Status: model.StatusError,
			Error:  lastErr.Error(),
		}
	}
	return model.VerificationResult{
		Status:     model.StatusUnverified,
		Confidence: 0,
	}
}

func (v *Verifier) put(query model.VerificationQuery, result model.VerificationResult, qt model.QueryType) {
	if v.cache == nil {
		return
	}
	// Cache writes are best-effort; a full disk never fails a verify
	_ = v.cache.Put(query, result, qt)
}
