// Package redirects derives the old-path → new-path mapping for the
// hosting platform. The serialization syntax is platform-specific, so
// callers supply a Formatter; the plain-text default is one rule per line.
package redirects

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gaurav-prasanna/presspipe/core"
)

// Rule maps one original permalink path to its new location.
type Rule struct {
	From   string
	To     string
	Status int
}

// Formatter serializes one rule in a platform's redirect syntax.
type Formatter func(Rule) string

// Plain serializes rules as "from to status" lines.
func Plain(r Rule) string {
	return fmt.Sprintf("%s %s %d", r.From, r.To, r.Status)
}

// FromRecords builds permanent redirects from each record's original
// permalink path to its new slug-addressed path. Records without a
// permalink, or whose permalink already equals the new path, produce no
// rule.
func FromRecords(records []core.ContentRecord, newPrefix string) []Rule {
	newPrefix = "/" + strings.Trim(newPrefix, "/") + "/"
	var rules []Rule
	for _, rec := range records {
		if rec.Permalink == "" || rec.Permalink == "/" {
			continue
		}
		to := newPrefix + rec.Slug + "/"
		if rec.Permalink == to {
			continue
		}
		rules = append(rules, Rule{From: rec.Permalink, To: to, Status: http.StatusMovedPermanently})
	}
	return rules
}

// Write serializes the rules with the given formatter.
func Write(w io.Writer, rules []Rule, format Formatter) error {
	if format == nil {
		format = Plain
	}
	for _, r := range rules {
		if _, err := fmt.Fprintln(w, format(r)); err != nil {
			return fmt.Errorf("writing redirect rule: %w", err)
		}
	}
	return nil
}
