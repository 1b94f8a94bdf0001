// Package rewrite repoints documents at localized assets. Substitution is
// exact-match on the canonical URI, never pattern-fuzzy, so unrelated
// similar URIs are never corrupted. Pending and Failed references are left
// verbatim: a broken source link beats a silently broken local path.
//
// The rewrite is idempotent by construction: once a URI has been replaced
// the document no longer contains it, so later runs are no-ops.
package rewrite

import (
	"sort"
	"strings"

	"github.com/gaurav-prasanna/presspipe/core/document"
)

// Rewrite replaces every occurrence of each resolved URI in the document
// body and cover field with its local address. It returns the number of
// URIs that were replaced at least once.
func Rewrite(doc *document.Document, resolved map[string]string) int {
	// Longest URI first, so when both a URI and a longer extension of it
	// are resolved, the longer one is consumed before the shorter.
	uris := make([]string, 0, len(resolved))
	for uri := range resolved {
		uris = append(uris, uri)
	}
	sort.Slice(uris, func(i, j int) bool {
		if len(uris[i]) != len(uris[j]) {
			return len(uris[i]) > len(uris[j])
		}
		return uris[i] < uris[j]
	})

	replaced := 0
	for _, uri := range uris {
		local := resolved[uri]
		hit := false
		if body, ok := replaceExact(doc.Body, uri, local); ok {
			doc.Body = body
			hit = true
		}
		if doc.Header.Cover == uri {
			doc.Header.Cover = local
			hit = true
		}
		if hit {
			replaced++
		}
	}
	return replaced
}

// replaceExact substitutes local for every occurrence of uri that is a
// whole reference: an occurrence followed by a byte that extends a URI
// (query, fragment, path, or name characters) belongs to a longer
// reference — one that is Pending, Failed, or simply not ours — and is
// left untouched.
func replaceExact(s, uri, local string) (string, bool) {
	orig := s
	var b strings.Builder
	replaced := false
	for {
		i := strings.Index(s, uri)
		if i < 0 {
			b.WriteString(s)
			break
		}
		rest := s[i+len(uri):]
		if len(rest) > 0 && uriByte(rest[0]) {
			// Prefix of a longer reference; skip past it unchanged.
			b.WriteString(s[:i+len(uri)])
		} else {
			b.WriteString(s[:i])
			b.WriteString(local)
			replaced = true
		}
		s = rest
	}
	if !replaced {
		return orig, false
	}
	return b.String(), true
}

// uriByte reports whether c can extend a URI beyond a candidate match.
func uriByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '?', '&', '#', '%', '=', '/', '.', '_', '-', '~', '+', ',', ';', ':', '@':
		return true
	}
	return false
}
