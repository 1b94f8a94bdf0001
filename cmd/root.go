// Package cmd implements the CLI commands for PressPipe using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/presspipe/config"
)

// Persistent flag variables.
var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "presspipe",
	Short: "PressPipe — convert a WordPress export into a static-site corpus",
	Long: `PressPipe converts a WordPress WXR export into a normalized static-site
corpus: Markdown documents with front-matter headers, localized media
assets, and rewritten internal links.

Usage:
  presspipe convert <export.xml> [flags]
  presspipe localize [flags]
  presspipe filter [flags]
  presspipe run <export.xml> [flags]
  presspipe redirects <export.xml> [flags]`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable informational logging")
}

// loadConfig loads the run configuration from --config over the defaults.
func loadConfig() (*config.Config, error) {
	return config.Load(flagConfig)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
