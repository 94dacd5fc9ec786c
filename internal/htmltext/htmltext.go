// Package htmltext extracts text and structured data blocks from HTML
// without a full DOM parser. Listing pages only need two things: tag
// stripping for rendered excerpts, and the raw contents of JSON-LD
// script blocks.
package htmltext

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions, shared across fetchers.
var (
	scriptTag  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	comments   = regexp.MustCompile(`(?s)<!--.*?-->`)
	allTags    = regexp.MustCompile(`<[^>]+>`)
	jsonldOpen = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>`)
	scriptEnd  = regexp.MustCompile(`(?i)</script>`)
)

// Strip removes markup from an HTML fragment and returns plain text
// with entities decoded and whitespace collapsed to single spaces.
// Meant for rendered titles and excerpts, not whole documents.
func Strip(fragment string) string {
	text := scriptTag.ReplaceAllString(fragment, " ")
	text = styleTag.ReplaceAllString(text, " ")
	text = comments.ReplaceAllString(text, " ")
	text = allTags.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// JSONLDBlocks returns the raw contents of every
// <script type="application/ld+json"> block in the page, in document
// order. The contents are returned as-is; callers decode the JSON.
func JSONLDBlocks(page string) []string {
	var blocks []string
	for {
		open := jsonldOpen.FindStringIndex(page)
		if open == nil {
			return blocks
		}
		rest := page[open[1]:]
		end := scriptEnd.FindStringIndex(rest)
		if end == nil {
			return blocks
		}
		if block := strings.TrimSpace(rest[:end[0]]); block != "" {
			blocks = append(blocks, block)
		}
		page = rest[end[1]:]
	}
}
