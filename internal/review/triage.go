package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/citewatch/citewatch/internal/extract"
	"github.com/citewatch/citewatch/internal/model"
	"github.com/citewatch/citewatch/internal/verify"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown documents or review items
var ErrNotFound = errors.New("not found")

// ConfidenceScorer supplies per-paragraph confidence for a document
type ConfidenceScorer interface {
	ComputeDocumentConfidence(content, documentPath string) model.DocumentConfidence
}

// CitationStore loads a document's registered citations
type CitationStore interface {
	LoadCitations(documentPath string) (*model.CitationFile, error)
}

// Verifier verifies one citation query
type Verifier interface {
	Verify(ctx context.Context, query model.VerificationQuery) model.VerificationResult
}

// LinkChecker probes citation URLs for accessibility
type LinkChecker interface {
	CheckAll(ctx context.Context, urls []string) []verify.LinkResult
}

// ScanOptions tunes a single scan. Nil pointer fields fall back to the
// triage defaults.
type ScanOptions struct {
	ConfidenceThreshold     *float64
	IncludePartialCitations *bool
	MaxItems                int
	CheckLinks              bool
}

// Triage scans a document's confidence data and citation verification
// results, builds a prioritized review queue, and applies reviewer
// actions. Queues are cached per document path.
type Triage struct {
	scorer    ConfidenceScorer
	store     CitationStore
	verifier  Verifier
	links     LinkChecker // nil disables URL probes
	authority *AuthorityClassifier

	mu             sync.RWMutex
	threshold      float64
	includePartial bool
	maxItems       int
	queues         map[string]*model.DocumentReviewQueue

	now func() time.Time
}

// NewTriage creates a triage engine
func NewTriage(scorer ConfidenceScorer, store CitationStore, verifier Verifier, links LinkChecker, cfg model.ReviewConfig) *Triage {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = 0.6
	}
	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = 100
	}

	return &Triage{
		scorer:         scorer,
		store:          store,
		verifier:       verifier,
		links:          links,
		authority:      NewAuthorityClassifier(),
		threshold:      threshold,
		includePartial: cfg.IncludePartialCitations,
		maxItems:       maxItems,
		queues:         make(map[string]*model.DocumentReviewQueue),
		now:            time.Now,
	}
}

// SetConfidenceThreshold updates the default threshold; values outside
// [0,1] are rejected
func (t *Triage) SetConfidenceThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1], got %v", threshold)
	}
	t.mu.Lock()
	t.threshold = threshold
	t.mu.Unlock()
	return nil
}

// GetConfidenceThreshold returns the current default threshold
func (t *Triage) GetConfidenceThreshold() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.threshold
}

// Scan builds the review queue for a document: low-confidence paragraphs
// below the threshold plus citations that failed verification, sorted by
// review priority and truncated to the item budget.
func (t *Triage) Scan(ctx context.Context, documentPath, content string, opts ScanOptions) (*model.DocumentReviewQueue, error) {
	threshold := t.GetConfidenceThreshold()
	if opts.ConfidenceThreshold != nil {
		v := *opts.ConfidenceThreshold
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("confidence threshold must be in [0,1], got %v", v)
		}
		threshold = v
	}

	includePartial := t.includePartial
	if opts.IncludePartialCitations != nil {
		includePartial = *opts.IncludePartialCitations
	}

	maxItems := t.maxItems
	if opts.MaxItems > 0 {
		maxItems = opts.MaxItems
	}

	plain := extract.NormalizeContent(content)
	now := t.now()

	// Citation-loading failures downgrade to "no citations to flag";
	// the paragraph-confidence portion of the scan still runs
	file, err := t.store.LoadCitations(documentPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: load citations for %s: %v\n", documentPath, err)
		file = &model.CitationFile{DocumentPath: documentPath}
	}

	var lowConfidence []model.ReviewItem
	for _, p := range t.scorer.ComputeDocumentConfidence(plain, documentPath).Paragraphs {
		if p.Confidence >= threshold {
			continue
		}
		lowConfidence = append(lowConfidence, model.ReviewItem{
			ID:             uuid.NewString(),
			Type:           model.ItemLowConfidence,
			DocumentPath:   documentPath,
			Status:         model.ReviewPending,
			CreatedAt:      now,
			UpdatedAt:      now,
			ParagraphIndex: p.ParagraphIndex,
			ParagraphText:  p.Text,
			Confidence:     p.Confidence,
			Indicators:     p.Indicators,
			Sources:        t.paragraphSources(p.Text, file),
		})
	}

	citationItems := t.scanCitations(ctx, documentPath, file, includePartial, opts.CheckLinks, now)

	items := append(citationItems, lowConfidence...)
	sortQueue(items)
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	queue := &model.DocumentReviewQueue{
		DocumentPath: documentPath,
		Items:        items,
		ScannedAt:    now,
	}
	queue.RecomputeStats()

	t.mu.Lock()
	t.queues[documentPath] = queue
	t.mu.Unlock()

	return queue, nil
}

// scanCitations verifies each registered citation and flags the ones a
// reviewer should look at
func (t *Triage) scanCitations(ctx context.Context, documentPath string, file *model.CitationFile, includePartial, checkLinks bool, now time.Time) []model.ReviewItem {
	var items []model.ReviewItem

	deadURLs := map[string]bool{}
	if checkLinks && t.links != nil {
		urls := make([]string, 0, len(file.Citations))
		for _, c := range file.Citations {
			if c.URL != "" {
				urls = append(urls, c.URL)
			}
		}
		for _, r := range t.links.CheckAll(ctx, urls) {
			if r.IsDead {
				deadURLs[r.URL] = true
			}
		}
	}

	for _, citation := range file.Citations {
		result := t.verifier.Verify(ctx, verify.QueryFromCitation(citation))

		flag := false
		switch result.Status {
		case model.StatusUnverified, model.StatusError:
			flag = true
		case model.StatusPartial:
			flag = includePartial
		}
		if !flag && !deadURLs[citation.URL] {
			continue
		}

		item := model.ReviewItem{
			ID:                 uuid.NewString(),
			Type:               model.ItemCitation,
			DocumentPath:       documentPath,
			Status:             model.ReviewPending,
			CreatedAt:          now,
			UpdatedAt:          now,
			CitationID:         citation.ID,
			CitationNumber:     citation.Number,
			CitationURL:        citation.URL,
			CitationTitle:      citation.Title,
			VerificationStatus: result.Status,
			Confidence:         result.Confidence,
			Usages:             citation.Usages,
		}
		if result.Error != "" {
			item.Indicators = append(item.Indicators, "verification error: "+result.Error)
		}
		if deadURLs[citation.URL] {
			item.Indicators = append(item.Indicators, "cited URL not reachable")
		}
		items = append(items, item)
	}

	return items
}

// paragraphSources derives candidate evidence from the paragraph's
// inline markers; a paragraph with none gets a synthetic source so the
// reviewer sees it has no citation at all
func (t *Triage) paragraphSources(text string, file *model.CitationFile) []model.EvidenceSource {
	var sources []model.EvidenceSource

	for _, number := range extract.MarkersIn(text) {
		for i := range file.Citations {
			c := &file.Citations[i]
			if c.Number != number {
				continue
			}
			label := c.Title
			if label == "" {
				label = c.URL
			}
			sources = append(sources, model.EvidenceSource{
				Label:     label,
				URL:       c.URL,
				Authority: t.authority.Classify(c.URL).String(),
			})
		}
	}

	if len(sources) == 0 {
		sources = append(sources, model.EvidenceSource{
			Label:     "AI generated, no citation",
			Synthetic: true,
		})
	}
	return sources
}

// sortQueue orders items by review priority: unverified citations first,
// then partial citations, then low-confidence paragraphs ascending by
// confidence
func sortQueue(items []model.ReviewItem) {
	rank := func(item model.ReviewItem) int {
		if item.Type == model.ItemCitation {
			if item.VerificationStatus == model.StatusPartial {
				return 1
			}
			return 0
		}
		return 2
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rank(items[i]), rank(items[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 2 {
			return items[i].Confidence < items[j].Confidence
		}
		return false
	})
}

// GetQueue returns the cached queue for a document
func (t *Triage) GetQueue(documentPath string) (*model.DocumentReviewQueue, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	queue, ok := t.queues[documentPath]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", documentPath, ErrNotFound)
	}
	return queue, nil
}

// GetPendingItems returns the document's items still awaiting review
func (t *Triage) GetPendingItems(documentPath string) ([]model.ReviewItem, error) {
	queue, err := t.GetQueue(documentPath)
	if err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var pending []model.ReviewItem
	for _, item := range queue.Items {
		if item.Status == model.ReviewPending {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

// AcceptItem marks an item as accepted
func (t *Triage) AcceptItem(documentPath, itemID string) error {
	return t.apply(documentPath, itemID, model.ReviewAccepted, "", "")
}

// EditItem marks an item as edited, recording the replacement text
func (t *Triage) EditItem(documentPath, itemID, editedText string) error {
	return t.apply(documentPath, itemID, model.ReviewEdited, editedText, "")
}

// RemoveItem marks an item as removed, recording the reason
func (t *Triage) RemoveItem(documentPath, itemID, reason string) error {
	return t.apply(documentPath, itemID, model.ReviewRemoved, "", reason)
}

// DismissItem marks an item as dismissed, recording the reason
func (t *Triage) DismissItem(documentPath, itemID, reason string) error {
	return t.apply(documentPath, itemID, model.ReviewDismissed, "", reason)
}

// apply transitions an item's status, records the action with a
// timestamp, and recomputes the queue stats
func (t *Triage) apply(documentPath, itemID string, status model.ReviewStatus, editedText, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	queue, ok := t.queues[documentPath]
	if !ok {
		return fmt.Errorf("document %q: %w", documentPath, ErrNotFound)
	}

	for i := range queue.Items {
		if queue.Items[i].ID != itemID {
			continue
		}
		now := t.now()
		queue.Items[i].Status = status
		queue.Items[i].UpdatedAt = now
		queue.Items[i].Action = &model.ReviewAction{
			Type:       status,
			Timestamp:  now,
			EditedText: editedText,
			Reason:     reason,
		}
		queue.RecomputeStats()
		return nil
	}

	return fmt.Errorf("item %q: %w", itemID, ErrNotFound)
}
