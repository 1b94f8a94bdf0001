// Package core defines the pipeline types and interfaces for PressPipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"io"
	"time"
)

// ContentRecord is one published item from the upstream export, normalized.
// Identity is Slug; the extractor guarantees uniqueness within a run.
// Records are immutable once extracted.
type ContentRecord struct {
	ID        int
	Title     string
	Slug      string
	Published time.Time
	Body      string // raw HTML fragment, possibly malformed
	Excerpt   string
	Labels    []string // taxonomy labels (categories + tags), sorted, unique
	Cover     string   // featured-image URL, empty when absent
	Permalink string   // original URL path of the item
}

// Extractor parses an upstream export into content records.
type Extractor interface {
	Extract(r io.Reader) ([]ContentRecord, error)
}

// Converter transforms one record's raw body into portable markup.
// It never fails on malformed input: unmatched constructs degrade to
// their text content.
type Converter interface {
	Convert(rec ContentRecord) (string, error)
}
