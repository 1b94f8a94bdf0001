// Package cmd — filter command.
// Applies the boilerplate filter to every stored document. Patterns come
// from the config file; with no patterns the command is a no-op.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/presspipe/config"
	"github.com/gaurav-prasanna/presspipe/core/document"
	"github.com/gaurav-prasanna/presspipe/core/filter"
	"github.com/gaurav-prasanna/presspipe/core/report"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Remove operator-owned promotional lines from documents",
	Long: `Filter removes document lines whose every URI matches an operator-supplied
pattern. Lines with no URIs, or with at least one non-matching URI, are
always kept in full, so guest content is never silently deleted.`,
	Args: cobra.NoArgs,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := document.NewStore(cfg.Output.DocumentDir)
	if err != nil {
		return fmt.Errorf("initializing document store: %w", err)
	}

	rep := report.New()
	if err := filterPhase(cfg, store, rep); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %d lines removed across %d documents\n", rep.FilteredLines, rep.Documents)
	return nil
}

// filterPhase applies the filter to every document, rewriting changed ones.
func filterPhase(cfg *config.Config, store *document.Store, rep *report.Report) error {
	f := filter.New(cfg.Filter.Patterns)

	slugs, err := store.List()
	if err != nil {
		return err
	}
	rep.Documents = len(slugs)

	for _, slug := range slugs {
		doc, err := store.Read(slug)
		if err != nil {
			return err
		}
		body, removed := f.Apply(doc.Body)
		if body == doc.Body {
			continue
		}
		doc.Body = body
		rep.FilteredLines += removed
		if _, err := store.Write(doc); err != nil {
			return err
		}
	}
	return nil
}
