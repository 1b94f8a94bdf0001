// Package convert implements the Converter interface: a rule-driven
// HTML → Markdown engine. The rule list (rules.go) is layered on top of
// html-to-markdown's dispatch, which tries the most recently registered
// rule first; rules are therefore registered in reverse so that index 0
// of the list has the highest priority. A rule whose Match rejects the
// node returns nil and falls through to the next rule, then to the
// library defaults: recurse into children, or emit text content when
// there are none.
package convert

import (
	"log/slog"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/presspipe/core"
)

var excessiveBlankLinesRe = regexp.MustCompile(`\n{3,}`)

// Engine converts raw body markup into portable Markdown. It never fails
// on malformed input; unconvertible input degrades to its text content.
type Engine struct {
	conv   *md.Converter
	logger *slog.Logger
}

// New builds an Engine with the given rule list (priority order).
func New(rules []Rule, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	conv := md.NewConverter("", true, nil)
	// Last registered is tried first, so walk the list backwards.
	for i := len(rules) - 1; i >= 0; i-- {
		conv.AddRules(adaptRule(rules[i]))
	}
	return &Engine{conv: conv, logger: logger}
}

// NewDefault builds an Engine with the built-in rule list.
func NewDefault(logger *slog.Logger) *Engine {
	return New(DefaultRules(nil), logger)
}

// adaptRule bridges a Rule onto the library's dispatch contract: nil
// means "not mine, try the next rule".
func adaptRule(rule Rule) md.Rule {
	return md.Rule{
		Filter: rule.Tags,
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			if !rule.Match(selec) {
				return nil
			}
			return md.String(rule.Render(selec))
		},
	}
}

// Convert transforms one record's raw body into portable Markdown.
func (e *Engine) Convert(rec core.ContentRecord) (string, error) {
	cleaned := Preprocess(rec.Body)

	markdown, err := e.conv.ConvertString(cleaned)
	if err != nil {
		// Degrade to text content rather than failing the record.
		e.logger.Info("conversion degraded to text content",
			"slug", rec.Slug, "error", err)
		return TextContent(cleaned), nil
	}
	return tidy(markdown), nil
}

// tidy collapses excess blank lines and trims trailing whitespace.
func tidy(markdown string) string {
	markdown = excessiveBlankLinesRe.ReplaceAllString(markdown, "\n\n")
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// blockBoundaryTags are elements whose edges become whitespace in
// TextContent, so text runs from adjacent blocks (URLs included) never
// jam together.
var blockBoundaryTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true,
	"th": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "blockquote": true, "pre": true, "figure": true,
	"figcaption": true, "section": true, "article": true,
}

// TextContent extracts the plain text of a markup fragment via a real
// parse-tree walk, never string replacement. html.Parse accepts
// arbitrarily malformed input, so this is also the converter's terminal
// fallback. Whitespace is collapsed to single spaces.
func TextContent(fragment string) string {
	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		boundary := n.Type == html.ElementNode && blockBoundaryTags[n.Data]
		if boundary {
			b.WriteByte(' ')
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if boundary {
			b.WriteByte(' ')
		}
	}
	walk(node)
	return strings.Join(strings.Fields(b.String()), " ")
}
