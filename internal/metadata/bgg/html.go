package bgg

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// CleanDescription normalizes a raw BGG description: decode the known
// entity set, strip any markup that survives decoding, and collapse
// whitespace runs left behind by the markup.
func CleanDescription(s string) string {
	if s == "" {
		return ""
	}
	decoded := DecodeEntities(s)
	if !strings.Contains(decoded, "<") {
		return strings.TrimSpace(collapseWhitespace(decoded))
	}
	return stripHTML(decoded)
}

// stripHTML removes HTML tags and returns plain text.
func stripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// If parsing fails, fall back to regex stripping
		return stripHTMLFallback(s)
	}

	var buf strings.Builder
	extractText(doc, &buf)

	return strings.TrimSpace(collapseWhitespace(buf.String()))
}

// extractText recursively extracts text content from HTML nodes.
func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}

	// Add space after block elements
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "h1", "h2", "h3":
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3":
			buf.WriteString(" ")
		}
	}
}

// stripHTMLFallback uses regex when parsing fails.
var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

func stripHTMLFallback(s string) string {
	s = htmlTagRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(collapseWhitespace(s))
}

// collapseWhitespace replaces multiple whitespace with single space.
var whitespaceRegex = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, " ")
}
