package extract

import (
	"strings"
	"testing"
)

func TestNormalizeContent_PlainTextPassesThrough(t *testing.T) {
	content := "Just a markdown paragraph.\n\nAnd another one."
	if got := NormalizeContent(content); got != content {
		t.Errorf("Expected plain text unchanged, got %q", got)
	}
}

func TestNormalizeContent_HTML(t *testing.T) {
	content := `<!DOCTYPE html>
<html><head><title>T</title><style>p{color:red}</style></head>
<body>
<h1>Findings</h1>
<p>Revenue grew 12% last year.</p>
<script>alert("skip me")</script>
<p>Costs fell.</p>
</body></html>`

	got := NormalizeContent(content)
	if !strings.Contains(got, "Revenue grew 12% last year.") {
		t.Errorf("Expected body text, got %q", got)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color:red") {
		t.Errorf("Expected script and style content stripped, got %q", got)
	}
	if !strings.Contains(got, "\n\n") {
		t.Errorf("Expected paragraph breaks preserved, got %q", got)
	}
}

func TestNormalizeContent_HTMLDetection(t *testing.T) {
	if got := NormalizeContent("<body>Short</body>"); got != "Short" {
		t.Errorf("Expected HTML reduced to text, got %q", got)
	}
	// An angle bracket alone is not HTML
	content := "a < b and b > c"
	if got := NormalizeContent(content); got != content {
		t.Errorf("Expected non-HTML untouched, got %q", got)
	}
}
