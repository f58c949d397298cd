package extract

import (
	"strconv"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
)

// lengthTolerance bounds how much a sentence may have grown or shrunk
// for the fingerprint fallback to accept it
const lengthTolerance = 0.2

// RelocationResult reports how many links survived an edit
type RelocationResult struct {
	Relocated int `json:"relocated"`
	Lost      int `json:"lost"`
}

// RelocationEngine re-locates persisted source-claim links in edited
// text so citation usages survive edits. Lost links are counted but
// never deleted; they stay in the store for manual reconciliation.
type RelocationEngine struct{}

// NewRelocationEngine creates a relocation engine
func NewRelocationEngine() *RelocationEngine {
	return &RelocationEngine{}
}

// Relocate updates every source-claim link in the citation file against
// the new text, along with the corresponding citation usages. Running it
// twice on unchanged text reproduces the same offsets.
func (e *RelocationEngine) Relocate(file *model.CitationFile, newText string) RelocationResult {
	var result RelocationResult

	sentences := SplitSentences(newText)

	for i := range file.SourceClaimLinks {
		link := &file.SourceClaimLinks[i]

		// Exact substring match first
		if offset := strings.Index(newText, link.ClaimText); offset >= 0 {
			updateLink(file, link, link.ClaimText, offset, lineAt(newText, offset))
			result.Relocated++
			continue
		}

		// Fingerprint fallback tolerates small in-sentence edits
		if s := matchByFingerprint(link, sentences); s != nil {
			updateLink(file, link, s.Text, s.Start, s.Line)
			result.Relocated++
			continue
		}

		result.Lost++
	}

	return result
}

// ContextKey derives the relocation fingerprint for a claim: its first
// word, last word, and length. Stored with the link so the claim can be
// re-identified after edits when exact matching fails.
func ContextKey(claimText string) string {
	words := strings.Fields(claimText)
	if len(words) == 0 {
		return ""
	}
	first := strings.ToLower(words[0])
	last := strings.ToLower(words[len(words)-1])
	return first + "|" + last + "|" + strconv.Itoa(len(claimText))
}

// matchByFingerprint scans sentences for the first whose first and last
// words match the link's fingerprint and whose length is within the
// tolerance of the original
func matchByFingerprint(link *model.SourceClaimLink, sentences []Sentence) *Sentence {
	first, last, length, ok := parseContextKey(link.ContextHash)
	if !ok {
		// Fall back to deriving the fingerprint from the claim text
		first, last, length, ok = parseContextKey(ContextKey(link.ClaimText))
		if !ok {
			return nil
		}
	}

	for i := range sentences {
		s := &sentences[i]
		words := strings.Fields(s.Text)
		if len(words) == 0 {
			continue
		}
		if strings.ToLower(words[0]) != first {
			continue
		}
		if strings.ToLower(strings.TrimRight(words[len(words)-1], ".!?")) !=
			strings.TrimRight(last, ".!?") {
			continue
		}
		if !withinTolerance(len(s.Text), length) {
			continue
		}
		return s
	}
	return nil
}

// updateLink rewrites the link and the matching citation usage in place
func updateLink(file *model.CitationFile, link *model.SourceClaimLink, newClaim string, offset, line int) {
	oldClaim := link.ClaimText

	link.ClaimText = newClaim
	link.OriginalOffset = offset
	link.OriginalLine = line
	link.ContextHash = ContextKey(newClaim)

	citation := file.FindByID(link.CitationID)
	if citation == nil {
		return
	}
	for i := range citation.Usages {
		if citation.Usages[i].Claim == oldClaim {
			citation.Usages[i].Claim = newClaim
			citation.Usages[i].Offset = offset
			citation.Usages[i].Line = line
		}
	}
}

func withinTolerance(got, want int) bool {
	if want == 0 {
		return false
	}
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) <= float64(want)*lengthTolerance
}

func parseContextKey(key string) (first, last string, length int, ok bool) {
	parts := strings.Split(key, "|")
	if len(parts) != 3 {
		return "", "", 0, false
	}
	length, err := strconv.Atoi(parts[2])
	if err != nil || length <= 0 {
		return "", "", 0, false
	}
	return parts[0], parts[1], length, true
}


