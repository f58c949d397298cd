package extract

import (
	"strings"
	"unicode"
)

// Sentence is a segment of text with absolute offsets into the original
type Sentence struct {
	Text  string
	Start int // Byte offset of first character
	End   int // Byte offset one past the last character
	Line  int // 1-based line of the first character
}

// minSentenceLength discards fragments shorter than this
const minSentenceLength = 10

// abbreviations that a sentence boundary must not break on
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "etc": true,
	"e.g": true, "i.e": true, "al": true, "fig": true, "no": true,
	"vol": true, "pp": true, "approx": true, "dept": true, "inc": true,
	"ltd": true, "corp": true, "jan": true, "feb": true, "mar": true,
	"apr": true, "jun": true, "jul": true, "aug": true, "sep": true,
	"sept": true, "oct": true, "nov": true, "dec": true,
}

// SplitSentences splits text into sentences with a boundary heuristic
// that avoids breaking on abbreviations and decimal numbers. Offsets are
// byte offsets into the original text.
func SplitSentences(text string) []Sentence {
	var sentences []Sentence
	start := 0

	flush := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if len(trimmed) >= minSentenceLength {
			// Adjust offsets for the whitespace trimmed off either side
			lead := strings.Index(raw, trimmed)
			s := start + lead
			sentences = append(sentences, Sentence{
				Text:  trimmed,
				Start: s,
				End:   s + len(trimmed),
				Line:  lineAt(text, s),
			})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if c == '\n' {
			// A blank line always terminates the sentence
			if i+1 < len(text) && text[i+1] == '\n' {
				flush(i)
			}
			continue
		}

		if c != '.' && c != '!' && c != '?' {
			continue
		}

		if c == '.' && !isBoundaryDot(text, i) {
			continue
		}

		// Consume trailing closers like quotes or parens
		end := i + 1
		for end < len(text) && (text[end] == '"' || text[end] == '\'' || text[end] == ')' || text[end] == ']') {
			end++
		}

		// A boundary needs following whitespace (or end of text)
		if end < len(text) && text[end] != ' ' && text[end] != '\t' && text[end] != '\n' {
			continue
		}

		flush(end)
	}

	flush(len(text))
	return sentences
}

// isBoundaryDot rejects periods inside abbreviations and decimals
func isBoundaryDot(text string, i int) bool {
	// Decimal number: digit on both sides
	if i > 0 && i+1 < len(text) &&
		unicode.IsDigit(rune(text[i-1])) && unicode.IsDigit(rune(text[i+1])) {
		return false
	}

	// Walk back to the start of the preceding word
	j := i
	for j > 0 && (unicode.IsLetter(rune(text[j-1])) || text[j-1] == '.') {
		j--
	}
	word := strings.ToLower(strings.TrimSuffix(text[j:i], "."))
	if abbreviations[word] {
		return false
	}

	// Single letters are initials ("J. Smith")
	if len(word) == 1 {
		return false
	}

	return true
}

// lineAt returns the 1-based line number of the byte offset
func lineAt(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	return 1 + strings.Count(text[:offset], "\n")
}
