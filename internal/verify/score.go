package verify

import (
	"strings"
	"unicode"

	"github.com/citewatch/citewatch/internal/model"
)

// Field weights for match confidence. DOI dominates: an exact DOI
// agreement is conclusive regardless of the noisier text fields.
const (
	weightDOI     = 1.0
	weightTitle   = 0.4
	weightAuthors = 0.3
	weightYear    = 0.15
	weightVenue   = 0.15
)

// verifiedThreshold is the confidence at which a match counts as verified
const verifiedThreshold = 0.8

// MatchConfidence scores how well a bibliographic record matches the
// query. Only fields present on both sides participate in the weighted
// average; exact DOI agreement short-circuits to 1.0.
func MatchConfidence(query model.VerificationQuery, match *model.BibRecord) float64 {
	if match == nil {
		return 0
	}

	if query.DOI != "" && match.DOI != "" && SameDOI(query.DOI, match.DOI) {
		return 1.0
	}

	var score, weight float64

	if query.Title != "" && match.Title != "" {
		score += weightTitle * titleSimilarity(query.Title, match.Title)
		weight += weightTitle
	}

	if len(query.Authors) > 0 && len(match.Authors) > 0 {
		score += weightAuthors * authorSimilarity(query.Authors, match.Authors)
		weight += weightAuthors
	}

	if query.Year != 0 && match.Year != 0 {
		if query.Year == match.Year {
			score += weightYear
		}
		weight += weightYear
	}

	if query.Venue != "" && match.Venue != "" {
		score += weightVenue * titleSimilarity(query.Venue, match.Venue)
		weight += weightVenue
	}

	if weight == 0 {
		return 0
	}

	confidence := score / weight
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}

// StatusForConfidence maps a confidence to a verification status
func StatusForConfidence(confidence float64) model.VerificationStatus {
	switch {
	case confidence >= verifiedThreshold:
		return model.StatusVerified
	case confidence > 0:
		return model.StatusPartial
	default:
		return model.StatusUnverified
	}
}

// titleSimilarity is the word-set Jaccard similarity of two titles,
// lower-cased with punctuation stripped
func titleSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// authorSimilarity credits each query author whose last name appears
// exactly among the match authors (full credit), or who shares any token
// longer than 2 chars (half credit). Capped at 1.0 across all authors.
func authorSimilarity(queryAuthors, matchAuthors []string) float64 {
	if len(queryAuthors) == 0 {
		return 0
	}

	var credit float64
	perAuthor := 1.0 / float64(len(queryAuthors))

	for _, qa := range queryAuthors {
		qLast := lastName(qa)
		qTokens := nameTokens(qa)

		matched := 0.0
		for _, ma := range matchAuthors {
			if qLast != "" && qLast == lastName(ma) {
				matched = 1.0
				break
			}
			for _, t := range qTokens {
				if len(t) > 2 && containsToken(ma, t) {
					matched = 0.5
				}
			}
		}
		credit += matched * perAuthor
	}

	if credit > 1 {
		credit = 1
	}
	return credit
}

func lastName(name string) string {
	tokens := nameTokens(name)
	if len(tokens) == 0 {
		return ""
	}
	// "Family, Given" style puts the last name first
	if strings.Contains(name, ",") {
		return tokens[0]
	}
	return tokens[len(tokens)-1]
}

func nameTokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func containsToken(name, token string) bool {
	for _, t := range nameTokens(name) {
		if t == token {
			return true
		}
	}
	return false
}

// wordSet lower-cases, strips punctuation and splits into a word set
func wordSet(s string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		if w != "" {
			set[w] = true
		}
	}
	return set
}
