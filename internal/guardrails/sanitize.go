package guardrails

import (
	"regexp"
	"strings"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^<>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Sanitize normalizes raw user text: strips C0/C1 control characters, removes
// HTML-like tags, collapses whitespace runs to single spaces, and trims the
// ends. Sanitize(Sanitize(s)) == Sanitize(s) for all s.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			// Controls become spaces so words separated by \n or \t stay separated.
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}

	// Strip tags to a fixpoint: removing "<b>" from "<<b>>" exposes "<>",
	// which must go too, or sanitizing twice would differ from sanitizing once.
	out := b.String()
	for {
		stripped := htmlTagPattern.ReplaceAllString(out, "")
		if stripped == out {
			break
		}
		out = stripped
	}

	out = whitespacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
