// Package document defines the converted document and its on-disk shape:
// a YAML front-matter header, a blank line, then the Markdown body.
//
// The header is emitted by hand rather than through a YAML marshaller so
// that key order is stable and title/description are always JSON-quoted,
// regardless of their content. Reading back goes through adrg/frontmatter,
// which accepts the JSON-quoted values as ordinary YAML strings.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DescriptionLimit is the maximum length of the description header field.
const DescriptionLimit = 160

// Header time layouts. DisplayDate is for humans; Date sorts
// lexicographically and must never be used for display. Both carry the
// full second-precision instant, so either one parses back to the same
// moment.
const (
	displayLayout  = "January 2, 2006 15:04:05"
	sortableLayout = "2006-01-02T15:04:05"
)

// Header is the metadata block of a converted document. Optional fields
// carry omitempty and are left out of the emitted header entirely when
// absent; downstream schema validation treats presence as semantic.
type Header struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	DisplayDate string   `yaml:"displaydate"`
	Date        string   `yaml:"date"`
	Slug        string   `yaml:"slug"`
	Cover       string   `yaml:"cover,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// Document is the unit of idempotent storage. Its on-disk identity is Slug.
type Document struct {
	Slug   string
	Header Header
	Body   string
}

// NewHeader builds a header from record fields. The two date fields are
// formatted independently from the same instant.
func NewHeader(title, slug, excerpt, cover string, tags []string, published time.Time) Header {
	return Header{
		Title:       title,
		Description: Summarize(excerpt, DescriptionLimit),
		DisplayDate: published.Format(displayLayout),
		Date:        published.Format(sortableLayout),
		Slug:        slug,
		Cover:       cover,
		Tags:        tags,
	}
}

// Summarize flattens newlines to spaces and truncates to at most limit
// bytes, backing off to a rune boundary so multi-byte text is never split
// mid-character.
func Summarize(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if limit > 0 && len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}

// Encode serializes the document to its on-disk form.
func (d *Document) Encode() []byte {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %s\n", jsonQuote(d.Header.Title))
	if d.Header.Description != "" {
		fmt.Fprintf(&b, "description: %s\n", jsonQuote(d.Header.Description))
	}
	fmt.Fprintf(&b, "displaydate: %s\n", d.Header.DisplayDate)
	fmt.Fprintf(&b, "date: %s\n", d.Header.Date)
	fmt.Fprintf(&b, "slug: %s\n", d.Header.Slug)
	if d.Header.Cover != "" {
		fmt.Fprintf(&b, "cover: %s\n", d.Header.Cover)
	}
	if len(d.Header.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, t := range d.Header.Tags {
			fmt.Fprintf(&b, "  - %s\n", t)
		}
	}
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(d.Body))
	b.WriteString("\n")
	return []byte(b.String())
}

// jsonQuote encodes a string as a JSON-quoted literal so embedded quotes,
// colons, and control characters survive the YAML header.
func jsonQuote(s string) string {
	quoted, err := json.Marshal(s)
	if err != nil {
		// json.Marshal cannot fail for a string; keep a safe fallback.
		return fmt.Sprintf("%q", s)
	}
	return string(quoted)
}
