package mapbox

import (
	"html"
	"strings"
)

// stripHTML removes markup from an instruction string. Mapbox instructions
// are usually plain text already, but the canonical contract is plain text
// always, so pre-formatted input is flattened rather than passed through.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return html.UnescapeString(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(strings.TrimSpace(b.String()))
}
