package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/citewatch/citewatch/internal/cache"
	"github.com/citewatch/citewatch/internal/extract"
	"github.com/citewatch/citewatch/internal/llm"
	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/review"
	"github.com/citewatch/citewatch/internal/score"
	"github.com/citewatch/citewatch/internal/store"
	"github.com/citewatch/citewatch/internal/verify"
	"github.com/citewatch/citewatch/internal/worker"
	"github.com/google/uuid"
)

// Pipeline is the evidence integrity pipeline: it verifies citations
// against bibliographic databases, links generated claims to their
// sources, keeps those links valid across edits, and triages content
// that needs human review.
type Pipeline struct {
	cfg        *model.Config
	cache      *cache.VerificationCache // nil when caching is disabled
	verifier   *verify.Verifier
	extractor  *extract.ClaimExtractor
	relocator  *extract.RelocationEngine
	citations  *store.SidecarStore
	triage     *review.Triage
	summarizer *llm.Summarizer // nil unless enabled
}

// NewPipeline wires the pipeline from configuration. Each bibliographic
// service gets its own rate-limiter bucket; expired cache entries are
// evicted at startup.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	var vc *cache.VerificationCache
	if cfg.Cache.Enabled {
		vc = cache.NewVerificationCache(cfg.Cache.Dir, cfg.Cache.DOITTL, cfg.Cache.SearchTTL, cfg.Cache.MemoryTTL)
		if evicted, err := vc.EvictExpired(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache eviction failed: %v\n", err)
		} else if evicted > 0 && cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Evicted %d expired cache entries\n", evicted)
		}
	}

	limiter := worker.NewLimiter(2, 5)
	limiter.SetServiceRate("crossref", cfg.Providers.Crossref.RequestsPerSecond, cfg.Providers.Crossref.Burst)
	limiter.SetServiceRate("openalex", cfg.Providers.OpenAlex.RequestsPerSecond, cfg.Providers.OpenAlex.Burst)

	providers := []verify.Provider{
		verify.NewCrossrefProvider(cfg.Providers.Crossref.BaseURL, cfg.HTTP),
		verify.NewOpenAlexProvider(cfg.Providers.OpenAlex.BaseURL, cfg.HTTP),
	}
	verifier := verify.NewVerifier(providers, limiter, vc)

	var links review.LinkChecker
	if cfg.LinkCheck.Enabled {
		links = verify.NewLinkChecker(cfg.HTTP, cfg.LinkCheck.Timeout, cfg.LinkCheck.MaxWorkers)
	}

	citations := store.NewSidecarStore()
	triage := review.NewTriage(score.NewConfidenceScorer(), citations, verifier, links, cfg.Review)

	var summarizer *llm.Summarizer
	if cfg.LLM.Enabled {
		s, err := llm.NewSummarizer(cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM summarizer: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		cfg:        cfg,
		cache:      vc,
		verifier:   verifier,
		extractor:  extract.NewClaimExtractor(),
		relocator:  extract.NewRelocationEngine(),
		citations:  citations,
		triage:     triage,
		summarizer: summarizer,
	}, nil
}

// VerifyCitation verifies a single bibliographic query
func (p *Pipeline) VerifyCitation(ctx context.Context, query model.VerificationQuery) model.VerificationResult {
	return p.verifier.Verify(ctx, query)
}

// VerifyCitations verifies queries sequentially, keyed by input index.
// One query's error never aborts the batch.
func (p *Pipeline) VerifyCitations(ctx context.Context, queries []model.VerificationQuery) map[int]model.VerificationResult {
	return p.verifier.VerifyMany(ctx, queries)
}

// Verifier exposes the underlying verifier for batch workers
func (p *Pipeline) Verifier() *verify.Verifier {
	return p.verifier
}

// ClearCache wipes the verification cache and returns the entry count
func (p *Pipeline) ClearCache() (int, error) {
	if p.cache == nil {
		return 0, fmt.Errorf("cache is disabled")
	}
	return p.cache.Clear()
}

// CacheStats reports cache entry counts and on-disk size
func (p *Pipeline) CacheStats() (cache.CacheStats, error) {
	if p.cache == nil {
		return cache.CacheStats{}, fmt.Errorf("cache is disabled")
	}
	return p.cache.Stats()
}

// AttachOptions tunes citation attachment
type AttachOptions struct {
	MinRelevance float64 // Sources scoring below this are ignored
}

// AttachResult is the outcome of attaching citations to generated text
type AttachResult struct {
	AnnotatedText  string                 `json:"annotated_text"`
	Claims         []model.ExtractedClaim `json:"claims"`
	AddedCitations int                    `json:"added_citations"`
	TotalCitations int                    `json:"total_citations"`
}

// AttachCitations extracts factual claims from generated text, registers
// citations for their supporting sources, persists source-claim links,
// and returns the text annotated with numbered markers.
func (p *Pipeline) AttachCitations(documentPath, generatedText string, sources []model.RAGSource, opts AttachOptions) (*AttachResult, error) {
	eligible := filterSources(sources, opts.MinRelevance)
	claims := p.extractor.ExtractClaims(generatedText, eligible)

	file, err := p.citations.LoadCitations(documentPath)
	if err != nil {
		return nil, fmt.Errorf("load citations: %w", err)
	}

	sourceByID := make(map[string]model.RAGSource, len(eligible))
	for _, src := range eligible {
		sourceByID[src.ID] = src
	}

	added := 0
	numberBySourceID := make(map[string]int)

	for _, claim := range claims {
		for _, sourceID := range claim.SourceIDs {
			src, ok := sourceByID[sourceID]
			if !ok {
				continue
			}

			citation := file.FindByURL(src.URL)
			if citation == nil {
				file.Citations = append(file.Citations, model.Citation{
					Number:    file.NextNumber,
					ID:        uuid.NewString(),
					URL:       src.URL,
					Title:     src.Title,
					Publisher: src.Publisher,
					Source:    src.Provider,
				})
				file.NextNumber++
				citation = &file.Citations[len(file.Citations)-1]
				added++
			}
			numberBySourceID[sourceID] = citation.Number

			if !hasUsage(citation, claim.Text) {
				citation.Usages = append(citation.Usages, model.Usage{
					Claim:  claim.Text,
					Line:   claim.Line,
					Offset: claim.StartOffset,
				})
			}
			if !hasLink(file, citation.ID, claim.Text) {
				file.SourceClaimLinks = append(file.SourceClaimLinks, model.SourceClaimLink{
					CitationID:     citation.ID,
					CitationNumber: citation.Number,
					ClaimText:      claim.Text,
					OriginalOffset: claim.StartOffset,
					OriginalLine:   claim.Line,
					ContextHash:    extract.ContextKey(claim.Text),
					Confidence:     claim.Confidence,
				})
			}
		}
	}

	if err := p.citations.SaveCitations(documentPath, file); err != nil {
		return nil, fmt.Errorf("save citations: %w", err)
	}

	return &AttachResult{
		AnnotatedText:  extract.InsertMarkers(generatedText, claims, numberBySourceID),
		Claims:         claims,
		AddedCitations: added,
		TotalCitations: len(file.Citations),
	}, nil
}

// RelocateAfterEdit re-locates persisted source-claim links in the
// edited document text and persists the updated offsets. Lost links are
// counted but kept for manual reconciliation.
func (p *Pipeline) RelocateAfterEdit(documentPath, newText string) (extract.RelocationResult, error) {
	file, err := p.citations.LoadCitations(documentPath)
	if err != nil {
		return extract.RelocationResult{}, fmt.Errorf("load citations: %w", err)
	}

	result := p.relocator.Relocate(file, newText)

	if err := p.citations.SaveCitations(documentPath, file); err != nil {
		return result, fmt.Errorf("save citations: %w", err)
	}
	return result, nil
}

// ScanDocument builds the prioritized review queue for a document.
// HTML content is reduced to its visible text before scoring.
func (p *Pipeline) ScanDocument(ctx context.Context, documentPath, content string, opts review.ScanOptions) (*model.DocumentReviewQueue, error) {
	return p.triage.Scan(ctx, documentPath, extract.NormalizeContent(content), opts)
}

// GetQueue returns the cached review queue for a document
func (p *Pipeline) GetQueue(documentPath string) (*model.DocumentReviewQueue, error) {
	return p.triage.GetQueue(documentPath)
}

// GetPendingItems returns items still awaiting review
func (p *Pipeline) GetPendingItems(documentPath string) ([]model.ReviewItem, error) {
	return p.triage.GetPendingItems(documentPath)
}

// AcceptItem marks a review item accepted
func (p *Pipeline) AcceptItem(documentPath, itemID string) error {
	return p.triage.AcceptItem(documentPath, itemID)
}

// EditItem marks a review item edited with replacement text
func (p *Pipeline) EditItem(documentPath, itemID, editedText string) error {
	return p.triage.EditItem(documentPath, itemID, editedText)
}

// RemoveItem marks a review item removed
func (p *Pipeline) RemoveItem(documentPath, itemID, reason string) error {
	return p.triage.RemoveItem(documentPath, itemID, reason)
}

// DismissItem marks a review item dismissed
func (p *Pipeline) DismissItem(documentPath, itemID, reason string) error {
	return p.triage.DismissItem(documentPath, itemID, reason)
}

// SetConfidenceThreshold updates the triage threshold; must be in [0,1]
func (p *Pipeline) SetConfidenceThreshold(threshold float64) error {
	return p.triage.SetConfidenceThreshold(threshold)
}

// GetConfidenceThreshold returns the current triage threshold
func (p *Pipeline) GetConfidenceThreshold() float64 {
	return p.triage.GetConfidenceThreshold()
}

// SummarizeQueue renders an optional LLM digest of the queue. Returns
// empty output when the summarizer is not enabled.
func (p *Pipeline) SummarizeQueue(ctx context.Context, documentPath string) (string, error) {
	if p.summarizer == nil {
		return "", nil
	}
	queue, err := p.triage.GetQueue(documentPath)
	if err != nil {
		return "", err
	}
	return p.summarizer.Summarize(ctx, queue)
}

func filterSources(sources []model.RAGSource, minRelevance float64) []model.RAGSource {
	if minRelevance <= 0 {
		return sources
	}
	var eligible []model.RAGSource
	for _, src := range sources {
		relevance := src.RelevanceScore
		if relevance == 0 {
			relevance = 0.5 // Unspecified relevance scores as moderate
		}
		if relevance >= minRelevance {
			eligible = append(eligible, src)
		}
	}
	return eligible
}

func hasUsage(citation *model.Citation, claim string) bool {
	for _, u := range citation.Usages {
		if u.Claim == claim {
			return true
		}
	}
	return false
}

func hasLink(file *model.CitationFile, citationID, claim string) bool {
	for _, l := range file.SourceClaimLinks {
		if l.CitationID == citationID && l.ClaimText == claim {
			return true
		}
	}
	return false
}
