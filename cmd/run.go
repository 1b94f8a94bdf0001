// Package cmd — run command.
// Runs the whole pipeline in order: extract → convert → {scan → localize →
// rewrite} → filter, then writes the JSON run report. Each phase produces
// the maximum amount of correct output it can; only extraction errors
// abort the run.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/presspipe/core/document"
	"github.com/gaurav-prasanna/presspipe/core/report"
)

var runCmd = &cobra.Command{
	Use:   "run <export.xml>",
	Short: "Run the full pipeline on an export",
	Long: `Run converts the export, localizes every external asset, rewrites links,
filters boilerplate, and writes the run report.

Example:
  presspipe run export.xml --config presspipe.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := extractRecords(args[0])
	if err != nil {
		return err
	}

	store, err := document.NewStore(cfg.Output.DocumentDir)
	if err != nil {
		return fmt.Errorf("initializing document store: %w", err)
	}

	rep := report.New()

	n, err := convertAll(records, cfg, store)
	if err != nil {
		return err
	}
	slog.Info("conversion complete", "documents", n)

	if err := localizePhase(cmd.Context(), cfg, store, rep); err != nil {
		return err
	}
	if err := filterPhase(cfg, store, rep); err != nil {
		return err
	}

	if err := rep.WriteFile(cfg.Output.ReportPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s\n", rep.Summary())
	fmt.Fprintf(os.Stdout, "✓ Report written: %s\n", cfg.Output.ReportPath)
	return nil
}
