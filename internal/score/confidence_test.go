package score

import (
	"math"
	"testing"
)

func TestScoreParagraph_CitedParagraphKeepsFullConfidence(t *testing.T) {
	confidence, indicators := scoreParagraph("The market grew by 15% last year [1].")

	if confidence != 1.0 {
		t.Errorf("Expected confidence 1.0 for a cited paragraph, got %f", confidence)
	}
	if len(indicators) != 0 {
		t.Errorf("Expected no indicators, got %v", indicators)
	}
}

func TestScoreParagraph_UncitedStatistics(t *testing.T) {
	confidence, indicators := scoreParagraph("The market grew by 15% last year and kept growing.")

	// 0.15 for no markers plus 0.3 for uncited statistics
	want := 1.0 - 0.15 - 0.3
	if math.Abs(confidence-want) > 1e-9 {
		t.Errorf("Expected confidence %f, got %f", want, confidence)
	}
	if len(indicators) != 2 {
		t.Errorf("Expected 2 indicators, got %v", indicators)
	}
}

func TestScoreParagraph_HedgingDeductionIsCapped(t *testing.T) {
	text := "It might possibly be true, perhaps, and it may be that results could be different, arguably [1]."
	confidence, _ := scoreParagraph(text)

	// Five or more hedges cap at 0.3; markers prevent other deductions
	want := 1.0 - 0.3
	if math.Abs(confidence-want) > 1e-9 {
		t.Errorf("Expected capped hedging deduction to give %f, got %f", want, confidence)
	}
}

func TestScoreParagraph_AbsoluteTermsWithoutMarkers(t *testing.T) {
	confidence, indicators := scoreParagraph("This approach always produces the best outcome for teams.")

	want := 1.0 - 0.15 - 0.1
	if math.Abs(confidence-want) > 1e-9 {
		t.Errorf("Expected confidence %f, got %f", want, confidence)
	}

	found := false
	for _, ind := range indicators {
		if ind == "unsupported absolute terms" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected absolute-terms indicator, got %v", indicators)
	}
}

func TestScoreParagraph_ConfidenceNeverNegative(t *testing.T) {
	text := "It might perhaps possibly always be 99% certain that all results are likely never guaranteed, reportedly, arguably, and every outcome may be different."
	confidence, _ := scoreParagraph(text)

	if confidence < 0 {
		t.Errorf("Expected confidence clamped at 0, got %f", confidence)
	}
}

func TestComputeDocumentConfidence_SkipsShortParagraphs(t *testing.T) {
	content := "## Heading\n\nThe market grew by 15% last year without any citation to back it."

	scorer := NewConfidenceScorer()
	result := scorer.ComputeDocumentConfidence(content, "doc.md")

	if len(result.Paragraphs) != 1 {
		t.Fatalf("Expected 1 scored paragraph, got %d", len(result.Paragraphs))
	}
	if result.Paragraphs[0].ParagraphIndex != 1 {
		t.Errorf("Expected paragraph index 1 to be preserved, got %d", result.Paragraphs[0].ParagraphIndex)
	}
}

func TestComputeDocumentConfidence_ParagraphTexts(t *testing.T) {
	content := "First paragraph with enough length to score and no numbers.\n\nSecond paragraph also long enough to be scored properly."

	scorer := NewConfidenceScorer()
	result := scorer.ComputeDocumentConfidence(content, "doc.md")

	if len(result.Paragraphs) != 2 {
		t.Fatalf("Expected 2 scored paragraphs, got %d", len(result.Paragraphs))
	}
	if result.Paragraphs[0].Text != "First paragraph with enough length to score and no numbers." {
		t.Errorf("Unexpected first paragraph text: %q", result.Paragraphs[0].Text)
	}
}
