// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag; script and style bodies are dropped with them.
var strict = bluemonday.StrictPolicy()

// maxPasses bounds the decode/strip loop for deeply nested entity encodings.
const maxPasses = 4

// PlainText strips all markup from s and returns trimmed plain text.
// Entities are decoded before stripping, and the pass repeats until the text
// is stable, so entity-encoded tags are removed too. "Q&A" round-trips.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(html.UnescapeString(out)))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
