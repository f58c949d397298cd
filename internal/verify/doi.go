package verify

import (
	"regexp"
	"strings"
)

// doiPattern matches the registrant prefix a DOI must start with
var doiPattern = regexp.MustCompile(`^10\.\d{4,}/\S+$`)

// NormalizeDOI strips resolver prefixes and lower-cases the DOI.
// DOI names are case-insensitive per the handle system.
func NormalizeDOI(doi string) string {
	s := strings.TrimSpace(doi)
	s = strings.TrimPrefix(s, "https://doi.org/")
	s = strings.TrimPrefix(s, "http://doi.org/")
	s = strings.TrimPrefix(s, "https://dx.doi.org/")
	s = strings.TrimPrefix(s, "http://dx.doi.org/")
	s = strings.TrimPrefix(s, "doi:")
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidDOI reports whether the normalized DOI has a plausible structure
func ValidDOI(doi string) bool {
	return doiPattern.MatchString(NormalizeDOI(doi))
}

// SameDOI reports whether two DOIs normalize to the same name
func SameDOI(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return NormalizeDOI(a) == NormalizeDOI(b)
}
