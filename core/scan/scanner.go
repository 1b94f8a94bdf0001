// Package scan walks converted documents and collects every
// externally-hosted reference into the shared reference table. It looks in
// three syntactic positions independently: Markdown image syntax, residual
// raw <img> tags inside opaque blocks, and the header's cover field.
//
// Only network-retrievable schemes are candidates. Already-local addresses
// are never collected, which is what lets the localize loop run repeatedly
// against the same corpus without re-doing finished work.
package scan

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/presspipe/core/document"
	"github.com/gaurav-prasanna/presspipe/core/refs"
)

// Markdown image reference: ![alt](uri) with an optional title.
var markdownImageRe = regexp.MustCompile(`!\[[^\]]*\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// Scan collects the document's external references into table.
func Scan(doc *document.Document, table *refs.Table) {
	for _, uri := range Collect(doc) {
		table.Add(uri, doc.Slug)
	}
}

// Collect returns the document's canonical external URIs, deduplicated,
// in first-seen order.
func Collect(doc *document.Document) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(raw string) {
		uri, ok := Canonical(raw)
		if !ok || seen[uri] {
			return
		}
		seen[uri] = true
		out = append(out, uri)
	}

	for _, m := range markdownImageRe.FindAllStringSubmatch(doc.Body, -1) {
		add(m[1])
	}
	for _, src := range rawImageSources(doc.Body) {
		add(src)
	}
	if doc.Header.Cover != "" {
		add(doc.Header.Cover)
	}
	return out
}

// rawImageSources finds src attributes of <img> tags left verbatim inside
// opaque raw-markup blocks (tables, preserved embeds).
func rawImageSources(body string) []string {
	if !strings.Contains(body, "<img") {
		return nil
	}
	gq, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}
	var srcs []string
	gq.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			srcs = append(srcs, src)
		}
	})
	return srcs
}

// Canonical normalizes a raw reference into its canonical URI, the unique
// key for deduplication. Fragments are dropped; anything without a
// network-retrievable scheme is rejected.
func Canonical(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if parsed.Host == "" {
		return "", false
	}
	parsed.Fragment = ""
	return parsed.String(), true
}
