// Store reads and writes documents under a single directory, one file per
// slug. Re-writing a document replaces the previous file, which is what
// makes repeated pipeline runs converge instead of duplicating output.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
)

// Store persists documents as <slug>.md files in Dir.
type Store struct {
	Dir string
}

// NewStore creates a Store, ensuring the directory exists.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Store{Dir: dir}, nil
}

// Path returns the on-disk path for a slug.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.Dir, slug+".md")
}

// Write persists the document and returns its path.
func (s *Store) Write(doc *Document) (string, error) {
	path := s.Path(doc.Slug)
	if err := os.WriteFile(path, doc.Encode(), 0644); err != nil {
		return "", fmt.Errorf("writing document %s: %w", path, err)
	}
	return path, nil
}

// Read loads and decodes the document for a slug.
func (s *Store) Read(slug string) (*Document, error) {
	data, err := os.ReadFile(s.Path(slug))
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", slug, err)
	}
	return Decode(slug, data)
}

// List returns the slugs of all stored documents, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing documents in %s: %w", s.Dir, err)
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// Decode parses the on-disk form back into a Document.
func Decode(slug string, data []byte) (*Document, error) {
	var head Header
	body, err := frontmatter.Parse(bytes.NewReader(data), &head)
	if err != nil {
		return nil, fmt.Errorf("parsing header of %s: %w", slug, err)
	}
	return &Document{
		Slug:   slug,
		Header: head,
		Body:   strings.TrimSpace(string(body)),
	}, nil
}
