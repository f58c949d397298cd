package verify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/citewatch/citewatch/internal/model"
)

var yearPattern = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)

// QueryFromCitation builds a verification query out of a registered
// citation's bibliographic fields. A doi.org URL contributes the DOI.
func QueryFromCitation(c model.Citation) model.VerificationQuery {
	query := model.VerificationQuery{
		Title: c.Title,
		URL:   c.URL,
	}

	if strings.Contains(c.URL, "doi.org/") {
		if doi := NormalizeDOI(c.URL); ValidDOI(doi) {
			query.DOI = doi
		}
	}

	if c.Authors != "" {
		query.Authors = splitAuthors(c.Authors)
	}

	if m := yearPattern.FindString(c.Date); m != "" {
		if year, err := strconv.Atoi(m); err == nil {
			query.Year = year
		}
	}

	return query
}

// splitAuthors handles "A, B and C" style author strings
func splitAuthors(authors string) []string {
	s := strings.ReplaceAll(authors, " and ", ";")
	s = strings.ReplaceAll(s, "&", ";")

	var names []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
