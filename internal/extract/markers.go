package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
)

// markerPattern recognizes an existing citation marker like [3] or [1, 4]
var markerPattern = regexp.MustCompile(`\[\d+(?:,\s*\d+)*\]`)

// markerWindow is how far around the insertion point an existing marker
// suppresses a new one, to avoid duplicates on reprocessing
const markerWindow = 12

// InsertMarkers rewrites text to insert numbered citation markers at
// claim boundaries. Claims are processed in descending end-offset order
// so earlier offsets stay valid while the text grows.
func InsertMarkers(text string, claims []model.ExtractedClaim, numberBySourceID map[string]int) string {
	ordered := make([]model.ExtractedClaim, len(claims))
	copy(ordered, claims)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EndOffset > ordered[j].EndOffset
	})

	for _, claim := range ordered {
		numbers := resolveNumbers(claim.SourceIDs, numberBySourceID)
		if len(numbers) == 0 {
			continue
		}

		pos := insertionPoint(text, claim.EndOffset)
		if hasNearbyMarker(text, pos) {
			continue
		}

		text = text[:pos] + formatMarker(numbers) + text[pos:]
	}

	return text
}

// resolveNumbers maps source IDs to citation numbers, deduplicated and
// sorted ascending
func resolveNumbers(sourceIDs []string, numberBySourceID map[string]int) []int {
	seen := make(map[int]bool)
	var numbers []int
	for _, id := range sourceIDs {
		if n, ok := numberBySourceID[id]; ok && !seen[n] {
			seen[n] = true
			numbers = append(numbers, n)
		}
	}
	sort.Ints(numbers)
	return numbers
}

// insertionPoint backs up over trailing sentence punctuation so the
// marker lands before it
func insertionPoint(text string, endOffset int) int {
	if endOffset > len(text) {
		endOffset = len(text)
	}

	pos := endOffset
	for pos > 0 {
		switch text[pos-1] {
		case '.', '!', '?', '"', '\'', ')', ']':
			pos--
		default:
			return pos
		}
	}
	return pos
}

// hasNearbyMarker reports whether a citation marker already exists
// within the window around pos
func hasNearbyMarker(text string, pos int) bool {
	lo := pos - markerWindow
	if lo < 0 {
		lo = 0
	}
	hi := pos + markerWindow
	if hi > len(text) {
		hi = len(text)
	}
	return markerPattern.MatchString(text[lo:hi])
}

// formatMarker renders " [1]" or " [1, 2]"
func formatMarker(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// MarkersIn returns the citation numbers referenced by markers in text
func MarkersIn(text string) []int {
	seen := make(map[int]bool)
	var numbers []int
	for _, m := range markerPattern.FindAllString(text, -1) {
		for _, field := range strings.Split(strings.Trim(m, "[]"), ",") {
			var n int
			if _, err := fmt.Sscanf(strings.TrimSpace(field), "%d", &n); err == nil && !seen[n] {
				seen[n] = true
				numbers = append(numbers, n)
			}
		}
	}
	return numbers
}
