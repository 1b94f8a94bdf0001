// Rule table for the converter. Rules are an ordered list of
// predicate/transform pairs: the first rule whose Match accepts the node
// wins, and a non-match falls through to the next rule and finally to the
// engine's default handling. Supporting a new embeddable widget type means
// adding one higher-priority rule here, never touching existing ones.
package convert

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rule matches a markup node and renders it to portable markup.
// Render output "" means the node is deleted (zero-width).
type Rule struct {
	Name   string
	Tags   []string
	Match  func(*goquery.Selection) bool
	Render func(*goquery.Selection) string
}

// embedTags are elements whose semantics cannot survive conversion to
// Markdown. They are preserved as opaque raw markup.
var embedTags = []string{"iframe", "embed", "object", "video", "audio"}

// containerTags are generic wrappers that may hold a single embed.
var containerTags = []string{"div", "figure", "p", "span", "section"}

// DefaultRules returns the rule list in priority order. extraEmbeds adds
// operator-configured embeddable element names ahead of the built-ins.
func DefaultRules(extraEmbeds []string) []Rule {
	embeds := append(append([]string{}, extraEmbeds...), embedTags...)
	embedSelector := strings.Join(embeds, ", ")

	matchAll := func(*goquery.Selection) bool { return true }

	return []Rule{
		{
			Name:   "embed",
			Tags:   embeds,
			Match:  matchAll,
			Render: rawBlock,
		},
		{
			Name:  "embed-container",
			Tags:  containerTags,
			Match: onlyEmbedInside(embedSelector),
			Render: func(s *goquery.Selection) string {
				return rawBlock(s.Find(embedSelector).First())
			},
		},
		{
			// Markdown tables are lossy beyond trivial grids, so
			// tables stay raw unconditionally.
			Name:   "table",
			Tags:   []string{"table"},
			Match:  matchAll,
			Render: rawBlock,
		},
		{
			// A figure that also carries an embed falls through to
			// per-child conversion, so the embed survives raw.
			Name:  "captioned-image",
			Tags:  []string{"figure"},
			Match: func(s *goquery.Selection) bool {
				return s.Find("img").Length() > 0 && s.Find(embedSelector).Length() == 0
			},
			Render: func(s *goquery.Selection) string {
				img := imageRef(s.Find("img").First())
				if img == "" {
					return ""
				}
				caption := strings.Join(strings.Fields(s.Find("figcaption").First().Text()), " ")
				if caption == "" {
					return "\n\n" + img + "\n\n"
				}
				return fmt.Sprintf("\n\n%s\n*%s*\n\n", img, caption)
			},
		},
		{
			Name:  "spacer",
			Tags:  []string{"div"},
			Match: isSpacer,
			Render: func(*goquery.Selection) string {
				return ""
			},
		},
		{
			Name:  "image",
			Tags:  []string{"img"},
			Match: matchAll,
			Render: func(s *goquery.Selection) string {
				return imageRef(s)
			},
		},
	}
}

// rawBlock renders the node's original markup as an opaque block wrapped
// in blank-line separators.
func rawBlock(s *goquery.Selection) string {
	raw, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	return "\n\n" + strings.TrimSpace(raw) + "\n\n"
}

// onlyEmbedInside reports whether the container's only meaningful
// descendant is a single embeddable element: exactly one embed, no
// images or tables, and no text beyond the embed's own fallback content.
func onlyEmbedInside(embedSelector string) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		embeds := s.Find(embedSelector)
		if embeds.Length() != 1 {
			return false
		}
		if s.Find("img, table").Length() > 0 {
			return false
		}
		outside := strings.Replace(s.Text(), embeds.Text(), "", 1)
		return strings.TrimSpace(outside) == ""
	}
}

// isSpacer detects decorative structural filler: a known spacer block, or
// an element with no children and no content.
func isSpacer(s *goquery.Selection) bool {
	if class, _ := s.Attr("class"); strings.Contains(class, "wp-block-spacer") {
		return true
	}
	return s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == ""
}

// imageRef builds a Markdown image from the source and alt attributes
// only; all other attributes are dropped. No source, no output.
func imageRef(img *goquery.Selection) string {
	src, _ := img.Attr("src")
	if strings.TrimSpace(src) == "" {
		return ""
	}
	alt, _ := img.Attr("alt")
	return fmt.Sprintf("![%s](%s)", strings.TrimSpace(alt), strings.TrimSpace(src))
}
