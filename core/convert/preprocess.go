package convert

import "regexp"

// Pre-compiled patterns stripped unconditionally before rule dispatch.
// None of these can ever be valid target content, whatever the rules say.
var (
	// Block-annotation comments, e.g. <!-- wp:paragraph --> / <!-- /wp:paragraph -->.
	blockAnnotationRe = regexp.MustCompile(`<!--\s*/?wp:[^>]*?-->`)

	// Known filler blocks emitted by the block editor.
	fillerBlockRe = regexp.MustCompile(`(?is)<div[^>]*class="[^"]*wp-block-spacer[^"]*"[^>]*>(?:&nbsp;|\s)*</div>`)

	// Paragraph shells with no content beyond whitespace and breaks.
	emptyParagraphRe = regexp.MustCompile(`(?is)<p[^>]*>(?:&nbsp;|\s|<br\s*/?>)*</p>`)
)

// Preprocess strips input patterns that are never valid target content.
func Preprocess(raw string) string {
	raw = blockAnnotationRe.ReplaceAllString(raw, "")
	raw = fillerBlockRe.ReplaceAllString(raw, "")
	raw = emptyParagraphRe.ReplaceAllString(raw, "")
	return raw
}
