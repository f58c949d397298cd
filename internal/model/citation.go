package model

// Citation represents a registered source with a stable display number
type Citation struct {
	Number    int     `json:"number"`              // Display order, unique per document
	ID        string  `json:"id"`                  // Stable identifier
	URL       string  `json:"url"`                 // Source URL
	Title     string  `json:"title,omitempty"`     // Source title
	Authors   string  `json:"authors,omitempty"`   // Author names, comma-separated
	Date      string  `json:"date,omitempty"`      // Publication date
	Publisher string  `json:"publisher,omitempty"` // Publisher name
	Source    string  `json:"source,omitempty"`    // Provider that supplied the source
	Usages    []Usage `json:"usages"`              // Where the citation is used
}

// Usage records one place in the document where a citation supports a claim
type Usage struct {
	Claim  string `json:"claim"`            // The claim text
	Line   int    `json:"line,omitempty"`   // 1-based line number
	Offset int    `json:"offset,omitempty"` // Absolute character offset
}

// SourceClaimLink ties a claim back to its citation so the link can be
// re-located after the document is edited. Persisted alongside citations.
type SourceClaimLink struct {
	CitationID     string  `json:"citation_id"`
	CitationNumber int     `json:"citation_number"`
	ClaimText      string  `json:"claim_text"`
	OriginalOffset int     `json:"original_offset"`
	OriginalLine   int     `json:"original_line"`
	ContextHash    string  `json:"context_hash"` // first word | last word | length
	Confidence     float64 `json:"confidence"`
}

// CitationFile is the per-document sidecar structure. Source-claim links
// ride as an extension field so they survive restarts with the citations.
type CitationFile struct {
	DocumentPath     string            `json:"document_path"`
	NextNumber       int               `json:"next_number"` // Never reused after removal
	Citations        []Citation        `json:"citations"`
	SourceClaimLinks []SourceClaimLink `json:"source_claim_links,omitempty"`
}

// FindByURL returns the citation with the given URL, or nil
func (f *CitationFile) FindByURL(url string) *Citation {
	for i := range f.Citations {
		if f.Citations[i].URL == url {
			return &f.Citations[i]
		}
	}
	return nil
}

// FindByID returns the citation with the given ID, or nil
func (f *CitationFile) FindByID(id string) *Citation {
	for i := range f.Citations {
		if f.Citations[i].ID == id {
			return &f.Citations[i]
		}
	}
	return nil
}

// RAGSource is a retrieved document or snippet offered as candidate
// evidence for generated text
type RAGSource struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score,omitempty"` // 0 means unspecified
	Provider       string  `json:"provider,omitempty"`
	Publisher      string  `json:"publisher,omitempty"`
}
