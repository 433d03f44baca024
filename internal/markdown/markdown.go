// Package markdown renders the restricted markdown subset used for
// assistant replies into HTML. Raw text is escaped before any substitution
// runs, so user-controlled input can only ever produce the tags emitted
// here.
package markdown

import (
	"html"
	"regexp"
	"strings"
)

var (
	bulletRe   = regexp.MustCompile(`^[-*•]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)

	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	boldStarRe  = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderRe = regexp.MustCompile(`__(.+?)__`)
	italStarRe  = regexp.MustCompile(`\*([^*]+)\*`)
	italUnderRe = regexp.MustCompile(`_([^_]+)_`)
)

// Render converts input into block-level HTML. The transform is pure and
// total: any input produces output, and unmatched control characters fall
// through as plain paragraph text.
func Render(input string) string {
	var b strings.Builder
	inList := false

	flushList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, rawLine := range strings.Split(input, "\n") {
		line := html.EscapeString(strings.TrimRight(rawLine, "\r"))
		trimmed := strings.TrimSpace(line)

		switch {
		case bulletRe.MatchString(trimmed):
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			item := bulletRe.FindStringSubmatch(trimmed)[1]
			b.WriteString("<li>" + inline(item) + "</li>")

		case numberedRe.MatchString(trimmed):
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			item := numberedRe.FindStringSubmatch(trimmed)[1]
			b.WriteString("<li>" + inline(item) + "</li>")

		case strings.HasPrefix(trimmed, "### "):
			flushList()
			b.WriteString("<h3>" + strings.TrimPrefix(trimmed, "### ") + "</h3>")

		case strings.HasPrefix(trimmed, "## "):
			flushList()
			b.WriteString("<h2>" + strings.TrimPrefix(trimmed, "## ") + "</h2>")

		case strings.HasPrefix(trimmed, "# "):
			flushList()
			b.WriteString("<h1>" + strings.TrimPrefix(trimmed, "# ") + "</h1>")

		case trimmed == "":
			flushList()
			b.WriteString("<br/>")

		default:
			flushList()
			b.WriteString("<p>" + inline(trimmed) + "</p>")
		}
	}
	flushList()

	return b.String()
}

// inline applies the link, bold and italic substitutions to an escaped
// line. Bold runs before italic so single-asterisk emphasis never consumes
// `**` sequences.
func inline(s string) string {
	s = linkRe.ReplaceAllString(s, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
	s = boldStarRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = boldUnderRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italStarRe.ReplaceAllString(s, "<em>$1</em>")
	s = italUnderRe.ReplaceAllString(s, "<em>$1</em>")
	return s
}
