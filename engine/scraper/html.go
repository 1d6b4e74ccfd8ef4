package scraper

import (
	"html"
	"regexp"
	"strings"
)

var (
	blockEnd = regexp.MustCompile(`(?i)</(p|div|li|br|h[1-6]|blockquote|pre|tr)>|<br\s*/?>`)
	tag      = regexp.MustCompile(`<[^>]+>`)
	blanks   = regexp.MustCompile(`\n{3,}`)
)

// stripHTML reduces cooked post HTML to plain text. Block boundaries
// become newlines so post structure survives the strip.
func stripHTML(s string) string {
	s = blockEnd.ReplaceAllString(s, "\n")
	s = tag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blanks.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
