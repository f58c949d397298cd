package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
)

// Verifier defines the interface for verifying a single query
type Verifier interface {
	Verify(ctx context.Context, query model.VerificationQuery) model.VerificationResult
}

// VerifyJob represents one citation verification job
type VerifyJob struct {
	Index    int
	Query    model.VerificationQuery
	Verifier Verifier
}

// Execute executes the verification job. Verification never returns an
// error to the pool; failures are folded into the result.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	return &VerifyResult{
		Index:  j.Index,
		Query:  j.Query,
		Result: j.Verifier.Verify(ctx, j.Query),
	}
}

// VerifyResult represents the result of a verification job
type VerifyResult struct {
	Index  int
	Query  model.VerificationQuery
	Result model.VerificationResult
}

// GetError returns nil; a failed verification is a result, not a job error
func (r *VerifyResult) GetError() error {
	return nil
}

// BatchVerifier verifies many queries concurrently. The shared verifier's
// per-service rate limiters still bound the outbound request rate, so
// pool concurrency only hides latency.
type BatchVerifier struct {
	verifier    Verifier
	concurrency int
}

// NewBatchVerifier creates a new batch verifier
func NewBatchVerifier(verifier Verifier, concurrency int) *BatchVerifier {
	return &BatchVerifier{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// VerifyQueries verifies all queries and returns results in input order.
// One query's failure never aborts the batch.
func (b *BatchVerifier) VerifyQueries(ctx context.Context, queries []model.VerificationQuery) []*VerifyResult {
	if len(queries) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPoolWithQueue(b.concurrency, len(queries))
	pool.Start()

	for i, q := range queries {
		pool.Submit(&VerifyJob{Index: i, Query: q, Verifier: b.verifier})
	}

	results := pool.Wait()

	ordered := make([]*VerifyResult, len(queries))
	for _, result := range results {
		vr := result.(*VerifyResult)
		ordered[vr.Index] = vr
	}

	return ordered
}

// VerifyFile reads queries from a file and verifies them concurrently
func (b *BatchVerifier) VerifyFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.VerifyQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line. A line starting with
// "10." is treated as a DOI; otherwise it is a title, with an optional
// trailing "|<year>" filter.
func ReadQueriesFromFile(filePath string) ([]model.VerificationQuery, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []model.VerificationQuery
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		queries = append(queries, parseQueryLine(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}

func parseQueryLine(line string) model.VerificationQuery {
	if strings.HasPrefix(line, "10.") || strings.Contains(line, "doi.org/10.") {
		return model.VerificationQuery{DOI: line}
	}

	query := model.VerificationQuery{Title: line}
	if idx := strings.LastIndex(line, "|"); idx > 0 {
		if year, err := strconv.Atoi(strings.TrimSpace(line[idx+1:])); err == nil && year > 1000 {
			query.Title = strings.TrimSpace(line[:idx])
			query.Year = year
		}
	}
	return query
}
