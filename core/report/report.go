// Package report builds the end-of-run summary. The run always completes
// and produces the maximum amount of correct output possible; the report
// is where per-reference failures and skipped rewrites surface so the
// operator can fix specific links and re-run the phase.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gaurav-prasanna/presspipe/core/refs"
)

// Report is the JSON summary written at the end of a run.
type Report struct {
	GeneratedAt    string         `json:"generated_at"`
	Documents      int            `json:"documents"`
	ResolvedAssets int            `json:"resolved_assets"`
	FailedAssets   []refs.Failure `json:"failed_assets,omitempty"`
	RewrittenLinks int            `json:"rewritten_links"`
	FilteredLines  int            `json:"filtered_lines"`
}

// New creates a report stamped with the current time.
func New() *Report {
	return &Report{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}
}

// FromTable fills in the asset outcome fields from the reference table.
func (r *Report) FromTable(table *refs.Table) {
	r.ResolvedAssets = len(table.Resolved())
	r.FailedAssets = table.Failures()
}

// WriteFile persists the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// Summary is a one-line human summary for the CLI.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d documents, %d assets resolved, %d failed, %d links rewritten, %d lines filtered",
		r.Documents, r.ResolvedAssets, len(r.FailedAssets), r.RewrittenLinks, r.FilteredLines)
}
