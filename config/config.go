// Package config provides configuration loading for PressPipe.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete PressPipe configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Convert ConvertConfig `yaml:"convert"`
	Filter  FilterConfig  `yaml:"filter"`
}

// OutputConfig controls where the corpus and assets land.
type OutputConfig struct {
	// DocumentDir holds one Markdown file per slug
	DocumentDir string `yaml:"document_dir"`
	// AssetDir holds localized assets
	AssetDir string `yaml:"asset_dir"`
	// AssetPrefix is the public address prefix rewritten into documents
	AssetPrefix string `yaml:"asset_prefix"`
	// ReportPath is where the end-of-run JSON report is written
	ReportPath string `yaml:"report_path"`
	// RedirectPrefix is the path prefix of relocated posts
	RedirectPrefix string `yaml:"redirect_prefix"`
}

// FetchConfig controls asset localization.
type FetchConfig struct {
	// Concurrency bounds parallel asset fetches
	Concurrency int `yaml:"concurrency"`
	// Timeout is the per-request limit; hitting it is a terminal failure
	Timeout time.Duration `yaml:"timeout"`
}

// ConvertConfig controls the markup converter.
type ConvertConfig struct {
	// ExtraEmbeds adds embeddable element names ahead of the built-ins
	ExtraEmbeds []string `yaml:"extra_embeds"`
}

// FilterConfig controls the boilerplate filter.
type FilterConfig struct {
	// Patterns identify operator-owned URIs/handles; a line is removed
	// only when every URI in it matches one of these
	Patterns []string `yaml:"patterns"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			DocumentDir:    "content/posts",
			AssetDir:       "static/images",
			AssetPrefix:    "/images/",
			ReportPath:     "presspipe-report.json",
			RedirectPrefix: "posts",
		},
		Fetch: FetchConfig{
			Concurrency: 8,
			Timeout:     30 * time.Second,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
