package model

// ExtractedClaim is a factual-claim sentence found in generated text,
// with absolute byte offsets into the original text and the IDs of the
// retrieval sources that support it.
type ExtractedClaim struct {
	Text        string   `json:"text"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Line        int      `json:"line"` // 1-based
	SourceIDs   []string `json:"source_ids,omitempty"`
	Confidence  float64  `json:"confidence"` // [0,1]
}
