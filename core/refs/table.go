// Package refs holds the shared reference table for the scan → localize →
// rewrite loop. The table is keyed by canonical URI with at-most-one entry
// per key, so concurrent discovery of the same URI from two documents
// collapses to one resolution. It is created per run and passed by
// reference through the three phases: init → populate → resolve → drain.
package refs

import (
	"sort"
	"sync"
)

// Status is the resolution state of an external reference.
type Status int

const (
	StatusPending Status = iota
	StatusResolved
	StatusFailed
)

// Reference is one unique external URI and its resolution outcome.
type Reference struct {
	URI    string
	Slugs  map[string]bool // documents it was discovered in
	Local  string          // local address, set when resolved
	Status Status
	Reason string // failure reason, set when failed
}

// Failure is a terminal failure surfaced in the end-of-run report.
type Failure struct {
	URI    string   `json:"uri"`
	Reason string   `json:"reason"`
	Slugs  []string `json:"slugs"`
}

// Table is the mutex-guarded reference map.
type Table struct {
	mu   sync.Mutex
	refs map[string]*Reference
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{refs: make(map[string]*Reference)}
}

// Add records that slug references uri. The first observation creates the
// entry Pending; later observations only extend the discovery set.
func (t *Table) Add(uri, slug string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ref, ok := t.refs[uri]
	if !ok {
		ref = &Reference{URI: uri, Slugs: make(map[string]bool), Status: StatusPending}
		t.refs[uri] = ref
	}
	ref.Slugs[slug] = true
}

// Pending returns the pending references sorted by URI. Sorted order keeps
// local-name assignment deterministic across runs.
func (t *Table) Pending() []*Reference {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Reference
	for _, ref := range t.refs {
		if ref.Status == StatusPending {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// Resolve transitions a reference to Resolved with its local address.
// Terminal states are never revisited.
func (t *Table) Resolve(uri, local string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ref, ok := t.refs[uri]; ok && ref.Status == StatusPending {
		ref.Status = StatusResolved
		ref.Local = local
	}
}

// Fail transitions a reference to Failed with a reason.
func (t *Table) Fail(uri, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ref, ok := t.refs[uri]; ok && ref.Status == StatusPending {
		ref.Status = StatusFailed
		ref.Reason = reason
	}
}

// Resolved returns the URI → local address map for the rewrite phase.
func (t *Table) Resolved() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string)
	for uri, ref := range t.refs {
		if ref.Status == StatusResolved {
			out[uri] = ref.Local
		}
	}
	return out
}

// Failures returns terminal failures sorted by URI.
func (t *Table) Failures() []Failure {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Failure
	for uri, ref := range t.refs {
		if ref.Status != StatusFailed {
			continue
		}
		slugs := make([]string, 0, len(ref.Slugs))
		for s := range ref.Slugs {
			slugs = append(slugs, s)
		}
		sort.Strings(slugs)
		out = append(out, Failure{URI: uri, Reason: ref.Reason, Slugs: slugs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// Len returns the number of tracked references.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.refs)
}
