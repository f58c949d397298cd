package model

import "time"

// ReviewStatus tracks the lifecycle of a review item
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewAccepted  ReviewStatus = "accepted"
	ReviewEdited    ReviewStatus = "edited"
	ReviewRemoved   ReviewStatus = "removed"
	ReviewDismissed ReviewStatus = "dismissed"
)

// ReviewItemType discriminates the review item union
type ReviewItemType string

const (
	ItemLowConfidence ReviewItemType = "low_confidence"
	ItemCitation      ReviewItemType = "citation"
)

// ReviewAction records what a reviewer did to an item
type ReviewAction struct {
	Type       ReviewStatus `json:"type"`
	Timestamp  time.Time    `json:"timestamp"`
	EditedText string       `json:"edited_text,omitempty"`
	Reason     string       `json:"reason,omitempty"`
}

// EvidenceSource is a candidate source attached to a low-confidence item
type EvidenceSource struct {
	Label     string `json:"label"`
	URL       string `json:"url,omitempty"`
	Authority string `json:"authority,omitempty"` // primary, secondary, tertiary
	Synthetic bool   `json:"synthetic,omitempty"` // "AI generated, no citation"
}

// ReviewItem is a tagged union: low-confidence paragraph or citation issue
type ReviewItem struct {
	ID           string         `json:"id"`
	Type         ReviewItemType `json:"type"`
	DocumentPath string         `json:"document_path"`
	Status       ReviewStatus   `json:"status"`
	Action       *ReviewAction  `json:"action,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Low-confidence paragraph fields
	ParagraphIndex int              `json:"paragraph_index,omitempty"`
	ParagraphText  string           `json:"paragraph_text,omitempty"`
	Confidence     float64          `json:"confidence,omitempty"`
	Indicators     []string         `json:"indicators,omitempty"`
	Sources        []EvidenceSource `json:"sources,omitempty"`

	// Citation fields
	CitationID         string             `json:"citation_id,omitempty"`
	CitationNumber     int                `json:"citation_number,omitempty"`
	CitationURL        string             `json:"citation_url,omitempty"`
	CitationTitle      string             `json:"citation_title,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
	Usages             []Usage            `json:"usages,omitempty"`
}

// QueueStats aggregates a review queue by status and type
type QueueStats struct {
	Total         int `json:"total"`
	Pending       int `json:"pending"`
	Accepted      int `json:"accepted"`
	Edited        int `json:"edited"`
	Removed       int `json:"removed"`
	Dismissed     int `json:"dismissed"`
	LowConfidence int `json:"low_confidence"`
	Citations     int `json:"citations"`
}

// DocumentReviewQueue holds the prioritized items for one document
type DocumentReviewQueue struct {
	DocumentPath string       `json:"document_path"`
	Items        []ReviewItem `json:"items"`
	Stats        QueueStats   `json:"stats"`
	ScannedAt    time.Time    `json:"scanned_at"`
}

// RecomputeStats rebuilds the aggregate counts from the item list
func (q *DocumentReviewQueue) RecomputeStats() {
	stats := QueueStats{Total: len(q.Items)}
	for _, item := range q.Items {
		switch item.Status {
		case ReviewPending:
			stats.Pending++
		case ReviewAccepted:
			stats.Accepted++
		case ReviewEdited:
			stats.Edited++
		case ReviewRemoved:
			stats.Removed++
		case ReviewDismissed:
			stats.Dismissed++
		}
		switch item.Type {
		case ItemLowConfidence:
			stats.LowConfidence++
		case ItemCitation:
			stats.Citations++
		}
	}
	q.Stats = stats
}

// ParagraphConfidence is the per-paragraph output of the confidence scorer
type ParagraphConfidence struct {
	ParagraphIndex int      `json:"paragraph_index"`
	Text           string   `json:"text"`
	Confidence     float64  `json:"confidence"`
	Indicators     []string `json:"indicators,omitempty"`
}

// DocumentConfidence is the full scoring result for a document
type DocumentConfidence struct {
	Paragraphs []ParagraphConfidence `json:"paragraphs"`
}
