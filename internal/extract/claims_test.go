package extract

import (
	"testing"

	"github.com/citewatch/citewatch/internal/model"
)

func TestHeuristicClassifier_FactualClaims(t *testing.T) {
	classifier := NewHeuristicClassifier()

	claims := []string{
		"The market grew by 15% according to a recent report.",
		"Revenue reached $4 billion in the third quarter.",
		"Go is a statically typed language.",
		"According to historians, the dish spread along trade routes.",
		"Unemployment is now lower than it was a decade ago.",
		"The outage was caused by a misconfigured load balancer.",
	}
	for _, sentence := range claims {
		if !classifier.IsFactualClaim(sentence) {
			t.Errorf("Expected %q to classify as a factual claim", sentence)
		}
	}
}

func TestHeuristicClassifier_NonClaims(t *testing.T) {
	classifier := NewHeuristicClassifier()

	nonClaims := []string{
		"What do you think about this approach?",
		"Please review the attached document carefully.",
		"Consider running the benchmark again tomorrow.",
		"We should probably talk about this soon.",
		"",
	}
	for _, sentence := range nonClaims {
		if classifier.IsFactualClaim(sentence) {
			t.Errorf("Expected %q to not classify as a factual claim", sentence)
		}
	}
}

func TestClaimExtractor_MatchesSupportingSource(t *testing.T) {
	extractor := NewClaimExtractor()

	text := "The market grew by 15% according to a recent report."
	sources := []model.RAGSource{
		{
			ID:             "s1",
			URL:            "https://example.com/market-report",
			Title:          "Market Report 2025",
			Content:        "Our analysis shows the market grew by 15% year over year.",
			RelevanceScore: 0.9,
		},
		{
			ID:      "s2",
			URL:     "https://example.com/unrelated",
			Title:   "Gardening Tips",
			Content: "Tomatoes thrive in well-drained soil with plenty of sun.",
		},
	}

	claims := extractor.ExtractClaims(text, sources)
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if len(claim.SourceIDs) == 0 {
		t.Fatal("Expected the claim to match at least one source")
	}
	if claim.SourceIDs[0] != "s1" {
		t.Errorf("Expected s1 as top source, got %s", claim.SourceIDs[0])
	}
	for _, id := range claim.SourceIDs {
		if id == "s2" {
			t.Error("Expected unrelated source s2 to be filtered out")
		}
	}
	if claim.Confidence <= 0 {
		t.Errorf("Expected positive confidence, got %f", claim.Confidence)
	}
	if claim.Confidence > 1 {
		t.Errorf("Expected confidence capped at 1, got %f", claim.Confidence)
	}
}

func TestClaimExtractor_NoSourcesStillExtracts(t *testing.T) {
	extractor := NewClaimExtractor()

	text := "Revenue increased by 40% over the previous fiscal year."
	claims := extractor.ExtractClaims(text, nil)
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if len(claims[0].SourceIDs) != 0 {
		t.Errorf("Expected no source IDs, got %v", claims[0].SourceIDs)
	}
}

func TestClaimExtractor_TopThreeSourcesOnly(t *testing.T) {
	extractor := NewClaimExtractor()

	text := "The market grew by 15% according to a recent report."
	content := "Analysts note the market grew by 15% during the period."
	sources := []model.RAGSource{
		{ID: "s1", Content: content},
		{ID: "s2", Content: content},
		{ID: "s3", Content: content},
		{ID: "s4", Content: content},
	}

	claims := extractor.ExtractClaims(text, sources)
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	if len(claims[0].SourceIDs) != 3 {
		t.Errorf("Expected at most 3 sources per claim, got %d", len(claims[0].SourceIDs))
	}
}

func TestClaimExtractor_ConfidenceGrowsWithSources(t *testing.T) {
	extractor := NewClaimExtractor()

	text := "The market grew by 15% according to a recent report."
	content := "The market grew by 15% according to the latest figures."

	one := extractor.ExtractClaims(text, []model.RAGSource{
		{ID: "s1", Content: content, RelevanceScore: 0.8},
	})
	two := extractor.ExtractClaims(text, []model.RAGSource{
		{ID: "s1", Content: content, RelevanceScore: 0.8},
		{ID: "s2", Content: content, RelevanceScore: 0.8},
	})

	if len(one) != 1 || len(two) != 1 {
		t.Fatalf("Expected 1 claim in each run, got %d and %d", len(one), len(two))
	}
	if two[0].Confidence <= one[0].Confidence {
		t.Errorf("Expected confidence to grow with source count: one=%f two=%f",
			one[0].Confidence, two[0].Confidence)
	}
}

func TestSharedNumericTokens(t *testing.T) {
	shared := sharedNumericTokens(
		"The market grew by 15% to 4 billion.",
		"Figures show 15% growth and 4 billion in revenue.",
	)
	if len(shared) != 2 {
		t.Errorf("Expected 2 shared numeric tokens, got %v", shared)
	}
}

func TestSharedProperPhrases(t *testing.T) {
	shared := sharedProperPhrases(
		"The World Health Organization issued new guidance.",
		"A statement from the World Health Organization confirmed the change.",
	)
	if len(shared) != 1 {
		t.Errorf("Expected 1 shared proper phrase, got %v", shared)
	}
}
