package score

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
)

// ConfidenceScorer computes per-paragraph confidence for generated
// content. Scoring is transparent: every deduction is reported as a
// named indicator on the paragraph.
type ConfidenceScorer struct{}

// NewConfidenceScorer creates a new scorer
func NewConfidenceScorer() *ConfidenceScorer {
	return &ConfidenceScorer{}
}

var (
	citationMarker = regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`)
	statisticToken = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent|million|billion|trillion)`)
	hedgingPhrase  = regexp.MustCompile(`(?i)\b(might|may be|possibly|perhaps|likely|could be|appears? to|seems? to|arguably|reportedly)\b`)
	absoluteTerm   = regexp.MustCompile(`(?i)\b(always|never|all|none|every|guaranteed|undoubtedly|certainly)\b`)
)

// minParagraphLength skips headings and stray fragments
const minParagraphLength = 30

// ComputeDocumentConfidence scores every paragraph of the content
func (s *ConfidenceScorer) ComputeDocumentConfidence(content, documentPath string) model.DocumentConfidence {
	var result model.DocumentConfidence

	for idx, text := range splitParagraphs(content) {
		if len(text) < minParagraphLength {
			continue
		}
		confidence, indicators := scoreParagraph(text)
		result.Paragraphs = append(result.Paragraphs, model.ParagraphConfidence{
			ParagraphIndex: idx,
			Text:           text,
			Confidence:     confidence,
			Indicators:     indicators,
		})
	}

	return result
}

// scoreParagraph starts at full confidence and deducts for each signal
// that the paragraph's content may not be well supported
func scoreParagraph(text string) (float64, []string) {
	confidence := 1.0
	var indicators []string

	hasMarkers := citationMarker.MatchString(text)
	hasStatistics := statisticToken.MatchString(text)

	if !hasMarkers {
		confidence -= 0.15
		indicators = append(indicators, "no citation markers")
	}

	if hasStatistics && !hasMarkers {
		confidence -= 0.3
		indicators = append(indicators, "statistics without citation")
	}

	if n := len(hedgingPhrase.FindAllString(text, -1)); n > 0 {
		deduction := 0.1 * float64(n)
		if deduction > 0.3 {
			deduction = 0.3
		}
		confidence -= deduction
		indicators = append(indicators, fmt.Sprintf("hedging language (%d)", n))
	}

	if absoluteTerm.MatchString(text) && !hasMarkers {
		confidence -= 0.1
		indicators = append(indicators, "unsupported absolute terms")
	}

	if confidence < 0 {
		confidence = 0
	}
	return confidence, indicators
}

// splitParagraphs splits content on blank lines
func splitParagraphs(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		paragraphs = append(paragraphs, strings.TrimSpace(p))
	}
	return paragraphs
}
