// Package filter removes operator-owned promotional lines from document
// bodies. The decision rule is per line, with no cross-line state: a line
// is removed only when it contains at least one URI and every URI in it
// matches an operator pattern. A single non-matching URI protects the
// whole line, and lines without URIs are always kept — mixed lines are
// never partially edited, so guest-attributed content is never silently
// deleted.
//
// Filtering runs to a fixed point. The bare-URI → link-syntax conversion
// applied between passes can make previously unmatchable boilerplate
// matchable, so the filter repeats until a pass changes nothing.
package filter

import (
	"regexp"
	"strings"
)

var (
	// Markdown link destination: [text](uri ...).
	linkDestRe = regexp.MustCompile(`\[[^\]]*\]\(\s*(https?://[^)\s]+)[^)]*\)`)

	// Bare URI outside link syntax. Trailing punctuation is not part of
	// the reference.
	bareURIRe = regexp.MustCompile(`https?://[^\s<>()\[\]]+`)

	// Full markdown link span, masked while linkifying bare URIs.
	markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
)

// Filter removes lines whose every URI matches an operator pattern.
type Filter struct {
	patterns []string
}

// New creates a Filter from operator URI/handle patterns. Matching is
// case-insensitive substring containment.
func New(patterns []string) *Filter {
	lowered := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Filter{patterns: lowered}
}

// Apply filters the body to a fixed point and returns the result along
// with the number of removed lines. With no patterns the body passes
// through untouched.
func (f *Filter) Apply(body string) (string, int) {
	if len(f.patterns) == 0 {
		return body, 0
	}
	removed := 0
	cur := body
	for {
		next, n := f.filterOnce(cur)
		next = linkifyBareURIs(next)
		if next == cur {
			return cur, removed
		}
		removed += n
		cur = next
	}
}

// filterOnce applies the decision rule to each line independently.
func (f *Filter) filterOnce(body string) (string, int) {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	removed := 0
	for _, line := range lines {
		if f.disqualified(line) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), removed
}

// disqualified reports whether the line holds at least one URI and every
// URI matches an operator pattern.
func (f *Filter) disqualified(line string) bool {
	uris := extractURIs(line)
	if len(uris) == 0 {
		return false
	}
	for _, uri := range uris {
		if !f.matches(uri) {
			return false
		}
	}
	return true
}

func (f *Filter) matches(uri string) bool {
	uri = strings.ToLower(uri)
	for _, p := range f.patterns {
		if strings.Contains(uri, p) {
			return true
		}
	}
	return false
}

// extractURIs pulls every URI from the line, in both link-destination and
// bare form.
func extractURIs(line string) []string {
	var uris []string
	stripped := linkDestRe.ReplaceAllStringFunc(line, func(m string) string {
		groups := linkDestRe.FindStringSubmatch(m)
		uris = append(uris, groups[1])
		return ""
	})
	for _, m := range bareURIRe.FindAllString(stripped, -1) {
		uris = append(uris, strings.TrimRight(m, ".,;:!?"))
	}
	return uris
}

// linkifyBareURIs converts bare URIs into autolink syntax so the next
// filter pass sees them the same way a renderer will. Existing link spans
// are masked so their destinations are never touched.
func linkifyBareURIs(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		// Leave opaque raw-markup blocks alone.
		if strings.Contains(line, "<") {
			continue
		}
		var b strings.Builder
		last := 0
		for _, span := range markdownLinkRe.FindAllStringIndex(line, -1) {
			b.WriteString(linkifySegment(line[last:span[0]]))
			b.WriteString(line[span[0]:span[1]])
			last = span[1]
		}
		b.WriteString(linkifySegment(line[last:]))
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func linkifySegment(s string) string {
	return bareURIRe.ReplaceAllStringFunc(s, func(m string) string {
		uri := strings.TrimRight(m, ".,;:!?")
		return "<" + uri + ">" + m[len(uri):]
	})
}
