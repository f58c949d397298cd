package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// NormalizeContent returns plain text for scanning. HTML documents are
// reduced to their visible text; anything else passes through unchanged.
func NormalizeContent(content string) string {
	if !looksLikeHTML(content) {
		return content
	}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}
	return visibleText(doc)
}

func looksLikeHTML(content string) bool {
	head := strings.ToLower(content)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") ||
		strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<body")
}

// visibleText extracts text nodes from HTML, skipping scripts and
// styles. Block elements become paragraph breaks so the confidence
// scorer sees the same paragraph structure a reader would.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "li":
				buf.WriteString("\n\n")
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.TrimSpace(buf.String())
}
