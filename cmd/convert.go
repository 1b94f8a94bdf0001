// Package cmd — convert command.
// Runs the first half of the pipeline: extract records from the export,
// convert each raw body to Markdown, and write one document per slug.
//
// Extraction errors (duplicate slug, missing field) are fatal and abort
// before any conversion; malformed bodies never fail a record — they
// degrade per the converter's fallback policy.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/presspipe/config"
	"github.com/gaurav-prasanna/presspipe/core"
	"github.com/gaurav-prasanna/presspipe/core/convert"
	"github.com/gaurav-prasanna/presspipe/core/document"
	"github.com/gaurav-prasanna/presspipe/core/extract"
)

var flagOutputDir string

var convertCmd = &cobra.Command{
	Use:   "convert <export.xml>",
	Short: "Convert an export into Markdown documents",
	Long: `Convert parses a WordPress WXR export, converts each published post's
HTML body into Markdown, and writes one front-matter document per slug.

Examples:
  presspipe convert export.xml
  presspipe convert export.xml --output_dir ./content/posts`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Document output directory (default from config)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagOutputDir != "" {
		cfg.Output.DocumentDir = flagOutputDir
	}

	records, err := extractRecords(args[0])
	if err != nil {
		return err
	}

	store, err := document.NewStore(cfg.Output.DocumentDir)
	if err != nil {
		return fmt.Errorf("initializing document store: %w", err)
	}

	n, err := convertAll(records, cfg, store)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Converted %d documents to %s\n", n, store.Dir)
	return nil
}

// extractRecords parses the export file into content records.
func extractRecords(path string) ([]core.ContentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	records, err := extract.New().Extract(f)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return records, nil
}

// convertAll converts every record and writes its document.
func convertAll(records []core.ContentRecord, cfg *config.Config, store *document.Store) (int, error) {
	engine := convert.New(convert.DefaultRules(cfg.Convert.ExtraEmbeds), slog.Default())

	for i, rec := range records {
		body, err := engine.Convert(rec)
		if err != nil {
			return i, fmt.Errorf("convert %s: %w", rec.Slug, err)
		}
		// Excerpts can carry markup of their own; only their text
		// belongs in the description field.
		doc := &document.Document{
			Slug:   rec.Slug,
			Header: document.NewHeader(rec.Title, rec.Slug, convert.TextContent(rec.Excerpt), rec.Cover, rec.Labels, rec.Published),
			Body:   body,
		}
		if _, err := store.Write(doc); err != nil {
			return i, err
		}
	}
	return len(records), nil
}
