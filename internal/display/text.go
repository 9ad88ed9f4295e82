package display

import (
	"html"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripHTML removes markup from s, decodes entities and collapses runs of
// blank lines into one. Every kept line is trimmed and newline-terminated.
func StripHTML(s string) string {
	text := html.UnescapeString(strict.Sanitize(s))
	text = strings.ReplaceAll(text, "\u00a0", " ")

	if text == "" {
		return ""
	}

	var b strings.Builder
	prevBlank := false
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !prevBlank {
				b.WriteByte('\n')
			}
			prevBlank = true
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
		prevBlank = false
	}
	return b.String()
}

// Truncate shortens s to at most max display cells, ending in an ellipsis
// when anything was cut.
func Truncate(s string, max int) string {
	return runewidth.Truncate(s, max, "…")
}

func orDash(p *string) string {
	if p == nil || *p == "" {
		return "—"
	}
	return *p
}

func firstOf(ps ...*string) *string {
	for _, p := range ps {
		if p != nil && *p != "" {
			return p
		}
	}
	return nil
}
