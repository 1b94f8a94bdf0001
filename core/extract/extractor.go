package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gaurav-prasanna/presspipe/core"
)

// Fatal extraction conditions. Downstream phases assume a consistent
// record set, so these abort the run before any conversion happens.
var (
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrMissingField  = errors.New("missing required field")
)

// thumbnailMetaKey is the postmeta key carrying the featured-media
// attachment ID.
const thumbnailMetaKey = "_thumbnail_id"

// Date layouts seen in exports, in preference order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// WXRExtractor parses a WXR export stream into content records.
type WXRExtractor struct{}

// New creates a WXRExtractor.
func New() *WXRExtractor {
	return &WXRExtractor{}
}

// Extract decodes the export and returns one record per published post.
// Attachment items are consumed internally to resolve cover references
// and never surface as records.
func (e *WXRExtractor) Extract(r io.Reader) ([]core.ContentRecord, error) {
	var export wxrExport
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	// First pass: attachment ID → URL, for the featured-media join.
	attachments := make(map[int]string)
	for _, item := range export.Channel.Items {
		if item.PostType == "attachment" && item.AttachmentURL != "" {
			attachments[item.PostID] = item.AttachmentURL
		}
	}

	seen := make(map[string]bool)
	var records []core.ContentRecord
	for _, item := range export.Channel.Items {
		if item.PostType != "post" || item.Status != "publish" {
			continue
		}

		slug := strings.TrimSpace(item.PostName)
		if slug == "" {
			return nil, fmt.Errorf("%w: post %d (%q) has no slug", ErrMissingField, item.PostID, item.Title)
		}
		if strings.TrimSpace(item.Title) == "" {
			return nil, fmt.Errorf("%w: post %d (slug %q) has no title", ErrMissingField, item.PostID, slug)
		}
		if seen[slug] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSlug, slug)
		}
		seen[slug] = true

		published, err := parseDate(item.PostDate, item.PubDate)
		if err != nil {
			return nil, fmt.Errorf("%w: post %q has no parseable date", ErrMissingField, slug)
		}

		records = append(records, core.ContentRecord{
			ID:        item.PostID,
			Title:     strings.TrimSpace(item.Title),
			Slug:      slug,
			Published: published,
			Body:      item.Content,
			Excerpt:   strings.TrimSpace(item.Excerpt),
			Labels:    taxonomyLabels(item.Categories),
			Cover:     coverURL(item.Meta, attachments),
			Permalink: permalinkPath(item.Link),
		})
	}
	return records, nil
}

// parseDate tries the site-local post date first, then the RSS pubDate.
func parseDate(postDate, pubDate string) (time.Time, error) {
	for _, raw := range []string{postDate, pubDate} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, errors.New("no parseable date")
}

// taxonomyLabels collects category and tag names as a sorted unique set.
func taxonomyLabels(cats []wxrCategory) []string {
	set := make(map[string]bool)
	for _, c := range cats {
		if c.Domain != "category" && c.Domain != "post_tag" {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name != "" {
			set[name] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	labels := make([]string, 0, len(set))
	for name := range set {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}

// coverURL resolves the featured-media pointer through the attachment map.
// A pointer to a missing attachment yields no cover rather than an error.
func coverURL(meta []wxrMeta, attachments map[int]string) string {
	for _, m := range meta {
		if m.Key != thumbnailMetaKey {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(m.Value))
		if err != nil {
			return ""
		}
		return attachments[id]
	}
	return ""
}

// permalinkPath reduces the item link to its URL path.
func permalinkPath(link string) string {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	return parsed.Path
}
