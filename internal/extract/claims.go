package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/citewatch/citewatch/internal/model"
)

// ClaimClassifier decides whether a sentence reads like a factual claim.
// Isolated as an interface so the heuristic set can be swapped or tuned
// without touching extraction or marker insertion.
type ClaimClassifier interface {
	IsFactualClaim(sentence string) bool
}

// HeuristicClassifier detects claims with pattern heuristics: numbers
// and statistics, definitive copulas, attribution phrases, comparative
// or causal language. Questions and imperatives are excluded.
type HeuristicClassifier struct {
	patterns   []*regexp.Regexp
	imperative map[string]bool
}

// NewHeuristicClassifier creates the default classifier
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{
		patterns: []*regexp.Regexp{
			// Statistics, percentages, currency
			regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)`),
			regexp.MustCompile(`[$€£¥]\s*\d`),
			regexp.MustCompile(`\d+(\.\d+)?\s*(million|billion|trillion|thousand)`),
			// Definitive copulas
			regexp.MustCompile(`(?i)\b(is|are|was|were)\s+(a|an|the)\b`),
			// Attribution phrases
			regexp.MustCompile(`(?i)\b(according to|research (shows|suggests|indicates)|studies (show|suggest|indicate|found)|data (shows|suggests|indicates)|a (recent )?(study|report|survey) (found|shows|showed|indicates))\b`),
			// Comparative or causal language
			regexp.MustCompile(`(?i)\b(more|less|fewer|higher|lower|greater) than\b`),
			regexp.MustCompile(`(?i)\b(increased?|decreased?|grew|fell|rose|declined|doubled|tripled)\b`),
			regexp.MustCompile(`(?i)\b(caused? by|leads? to|results? in|due to|because of)\b`),
		},
		imperative: map[string]bool{
			"please": true, "note": true, "consider": true, "remember": true,
			"imagine": true, "let": true, "see": true, "try": true,
			"use": true, "make": true, "ensure": true, "check": true,
		},
	}
}

// IsFactualClaim reports whether the sentence looks like a factual claim
func (c *HeuristicClassifier) IsFactualClaim(sentence string) bool {
	trimmed := strings.TrimSpace(sentence)
	if trimmed == "" {
		return false
	}

	// Questions are not claims
	if strings.HasSuffix(trimmed, "?") {
		return false
	}

	// Imperatives are instructions, not claims
	if fields := strings.Fields(strings.ToLower(trimmed)); len(fields) > 0 {
		if c.imperative[strings.Trim(fields[0], ",.:;")] {
			return false
		}
	}

	for _, p := range c.patterns {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// Source-relevance scoring bounds
const (
	relevanceKeepThreshold = 0.1
	maxSourcesPerClaim     = 3
	numericTokenBonus      = 0.1
	properPhraseBonus      = 0.15
	bonusCap               = 0.5
	defaultRelevance       = 0.5
)

// ClaimExtractor segments generated text into candidate factual claims
// and associates each with the sources that most plausibly support it
type ClaimExtractor struct {
	classifier ClaimClassifier
}

// NewClaimExtractor creates an extractor with the default classifier
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{classifier: NewHeuristicClassifier()}
}

// NewClaimExtractorWithClassifier creates an extractor with a custom classifier
func NewClaimExtractorWithClassifier(classifier ClaimClassifier) *ClaimExtractor {
	return &ClaimExtractor{classifier: classifier}
}

// ExtractClaims scans text for factual-claim sentences and scores every
// candidate source against each. Output claims carry absolute offsets
// into the original text for later marker insertion.
func (e *ClaimExtractor) ExtractClaims(text string, sources []model.RAGSource) []model.ExtractedClaim {
	var claims []model.ExtractedClaim

	for _, sentence := range SplitSentences(text) {
		if !e.classifier.IsFactualClaim(sentence.Text) {
			continue
		}

		matched, avgRelevance := matchSources(sentence.Text, sources)

		// Confidence grows with supporting source count, topped up by
		// how relevant those sources are
		confidence := float64(len(matched)) * 0.25
		if confidence > 0.75 {
			confidence = 0.75
		}
		confidence += avgRelevance * 0.25
		if confidence > 1 {
			confidence = 1
		}

		claims = append(claims, model.ExtractedClaim{
			Text:        sentence.Text,
			StartOffset: sentence.Start,
			EndOffset:   sentence.End,
			Line:        sentence.Line,
			SourceIDs:   matched,
			Confidence:  confidence,
		})
	}

	return claims
}

// matchSources returns the IDs of the top-scoring sources for the
// sentence, plus their mean relevance score
func matchSources(sentence string, sources []model.RAGSource) ([]string, float64) {
	type scored struct {
		id        string
		score     float64
		relevance float64
	}

	var candidates []scored
	for _, src := range sources {
		score := sourceScore(sentence, src)
		if score <= relevanceKeepThreshold {
			continue
		}
		relevance := src.RelevanceScore
		if relevance == 0 {
			relevance = defaultRelevance
		}
		candidates = append(candidates, scored{id: src.ID, score: score, relevance: relevance})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxSourcesPerClaim {
		candidates = candidates[:maxSourcesPerClaim]
	}

	if len(candidates) == 0 {
		return nil, 0
	}

	ids := make([]string, len(candidates))
	var relevanceSum float64
	for i, c := range candidates {
		ids[i] = c.id
		relevanceSum += c.relevance
	}
	return ids, relevanceSum / float64(len(candidates))
}

// sourceScore combines word-set Jaccard similarity with bonuses for
// shared numeric tokens and shared capitalized multi-word phrases
func sourceScore(sentence string, src model.RAGSource) float64 {
	content := src.Content
	if content == "" {
		content = src.Title
	}

	score := jaccard(sentence, content)

	var bonus float64
	sharedNums := sharedNumericTokens(sentence, content)
	bonus += float64(len(sharedNums)) * numericTokenBonus
	sharedPhrases := sharedProperPhrases(sentence, content)
	bonus += float64(len(sharedPhrases)) * properPhraseBonus
	if bonus > bonusCap {
		bonus = bonusCap
	}

	return score + bonus
}

// jaccard computes word-set Jaccard similarity between two texts
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	return float64(intersection) / float64(len(setA)+len(setB)-intersection)
}

func tokenSet(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '%' && r != '.'
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

var numericToken = regexp.MustCompile(`\d+(\.\d+)?%?`)

func sharedNumericTokens(a, b string) []string {
	inB := make(map[string]bool)
	for _, n := range numericToken.FindAllString(b, -1) {
		inB[n] = true
	}

	seen := make(map[string]bool)
	var shared []string
	for _, n := range numericToken.FindAllString(a, -1) {
		if inB[n] && !seen[n] {
			seen[n] = true
			shared = append(shared, n)
		}
	}
	return shared
}

var properPhrase = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)

func sharedProperPhrases(a, b string) []string {
	inB := make(map[string]bool)
	for _, p := range properPhrase.FindAllString(b, -1) {
		inB[p] = true
	}

	seen := make(map[string]bool)
	var shared []string
	for _, p := range properPhrase.FindAllString(a, -1) {
		if inB[p] && !seen[p] {
			seen[p] = true
			shared = append(shared, p)
		}
	}
	return shared
}
