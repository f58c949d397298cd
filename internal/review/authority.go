package review

import (
	"net/url"
	"strings"
)

// AuthorityTier classifies how authoritative an evidence source is
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0
	TierPrimary   AuthorityTier = 1 // Journals, preprint servers, official bodies
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// AuthorityClassifier maps evidence source URLs to authority tiers so a
// reviewer can rank candidate evidence at a glance
type AuthorityClassifier struct {
	primary   map[string]bool
	secondary map[string]bool
}

// NewAuthorityClassifier creates a classifier with built-in defaults for
// common scholarly and publishing domains
func NewAuthorityClassifier() *AuthorityClassifier {
	return &AuthorityClassifier{
		primary: toSet(
			"doi.org", "dx.doi.org", "arxiv.org", "pubmed.ncbi.nlm.nih.gov",
			"ncbi.nlm.nih.gov", "nature.com", "science.org", "thelancet.com",
			"nejm.org", "acm.org", "ieee.org", "springer.com", "sciencedirect.com",
			"plos.org", "pnas.org", "jstor.org", "ssrn.com",
		),
		secondary: toSet(
			"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
			"bbc.com", "bbc.co.uk", "nytimes.com", "theguardian.com",
			"economist.com", "ft.com", "washingtonpost.com", "wsj.com",
		),
	}
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return TierUnknown
	}

	host := strings.ToLower(parsed.Hostname())

	if matchDomain(host, a.primary) {
		return TierPrimary
	}
	if matchDomain(host, a.secondary) {
		return TierSecondary
	}

	// Government and academic hosts count as primary
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") ||
		strings.HasSuffix(host, ".ac.uk") {
		return TierPrimary
	}

	return TierTertiary
}

func matchDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for d := range domains {
		if strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func toSet(domains ...string) map[string]bool {
	set := make(map[string]bool, len(domains))
	for _, d := range domains {
		set[d] = true
	}
	return set
}
