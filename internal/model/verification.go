package model

// VerificationStatus classifies the outcome of a bibliographic check
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"   // Confidence >= 0.8
	StatusPartial    VerificationStatus = "partial"    // Some fields matched
	StatusUnverified VerificationStatus = "unverified" // No match found
	StatusError      VerificationStatus = "error"      // Lookup failed
)

// VerificationQuery describes the bibliographic record to verify.
// At least one field must be present for a search strategy to run.
type VerificationQuery struct {
	DOI     string   `json:"doi,omitempty"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
	Venue   string   `json:"venue,omitempty"`
	URL     string   `json:"url,omitempty"`
}

// IsEmpty reports whether the query carries no searchable field
func (q VerificationQuery) IsEmpty() bool {
	return q.DOI == "" && q.Title == "" && len(q.Authors) == 0 && q.Year == 0 && q.URL == ""
}

// BibRecord is a normalized bibliographic record returned by a provider
type BibRecord struct {
	DOI     string   `json:"doi,omitempty"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Year    int      `json:"year,omitempty"`
	Venue   string   `json:"venue,omitempty"`
	URL     string   `json:"url,omitempty"`
}

// VerificationResult is the scored outcome of verifying one query
type VerificationResult struct {
	Status      VerificationStatus `json:"status"`
	Confidence  float64            `json:"confidence"` // [0,1]
	Source      string             `json:"source,omitempty"` // crossref, openalex, cache
	MatchedData *BibRecord         `json:"matched_data,omitempty"`
	Error       string             `json:"error,omitempty"`
	FromCache   bool               `json:"from_cache"`
}

// QueryType distinguishes cache TTL tiers
type QueryType string

const (
	QueryTypeDOI    QueryType = "doi"    // Cached 7 days
	QueryTypeSearch QueryType = "search" // Cached 1 hour
)
