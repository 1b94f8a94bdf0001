// Package cmd — redirects command.
// Emits the old-path → new-path mapping for the hosting platform.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/presspipe/core/redirects"
)

var flagRedirectsOut string

var redirectsCmd = &cobra.Command{
	Use:   "redirects <export.xml>",
	Short: "Emit the permalink redirect mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runRedirects,
}

func init() {
	rootCmd.AddCommand(redirectsCmd)
	redirectsCmd.Flags().StringVar(&flagRedirectsOut, "out", "", "Output file (default: stdout)")
}

func runRedirects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records, err := extractRecords(args[0])
	if err != nil {
		return err
	}
	rules := redirects.FromRecords(records, cfg.Output.RedirectPrefix)

	w := os.Stdout
	if flagRedirectsOut != "" {
		f, err := os.Create(flagRedirectsOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagRedirectsOut, err)
		}
		defer f.Close()
		w = f
	}
	return redirects.Write(w, rules, redirects.Plain)
}
