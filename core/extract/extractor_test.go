package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportHeader = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:wp="http://wordpress.org/export/1.2/">
<channel>
	<title>Example Blog</title>
	<link>https://blog.example</link>
`

const exportFooter = `</channel>
</rss>`

const samplePost = `<item>
	<title>First Post</title>
	<link>https://blog.example/2021/03/first-post/</link>
	<pubDate>Sun, 14 Mar 2021 09:26:53 +0000</pubDate>
	<content:encoded><![CDATA[<p>Hello</p>]]></content:encoded>
	<excerpt:encoded><![CDATA[A short summary.]]></excerpt:encoded>
	<wp:post_id>11</wp:post_id>
	<wp:post_date>2021-03-14 09:26:53</wp:post_date>
	<wp:post_name>first-post</wp:post_name>
	<wp:post_type>post</wp:post_type>
	<wp:status>publish</wp:status>
	<category domain="category"><![CDATA[Essays]]></category>
	<category domain="post_tag"><![CDATA[golang]]></category>
	<category domain="author"><![CDATA[ignored]]></category>
	<wp:postmeta>
		<wp:meta_key>_thumbnail_id</wp:meta_key>
		<wp:meta_value>42</wp:meta_value>
	</wp:postmeta>
</item>`

const sampleAttachment = `<item>
	<title>cover</title>
	<wp:post_id>42</wp:post_id>
	<wp:post_type>attachment</wp:post_type>
	<wp:status>inherit</wp:status>
	<wp:attachment_url>https://cdn.example/uploads/cover.jpg</wp:attachment_url>
</item>`

const sampleDraft = `<item>
	<title>Unfinished</title>
	<wp:post_id>12</wp:post_id>
	<wp:post_name>unfinished</wp:post_name>
	<wp:post_type>post</wp:post_type>
	<wp:status>draft</wp:status>
</item>`

func TestExtract_PublishedPostsOnly(t *testing.T) {
	export := exportHeader + samplePost + sampleAttachment + sampleDraft + exportFooter

	records, err := New().Extract(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 11, rec.ID)
	assert.Equal(t, "First Post", rec.Title)
	assert.Equal(t, "first-post", rec.Slug)
	assert.Equal(t, "<p>Hello</p>", rec.Body)
	assert.Equal(t, "A short summary.", rec.Excerpt)
	assert.Equal(t, "/2021/03/first-post/", rec.Permalink)
	assert.Equal(t, 2021, rec.Published.Year())
	assert.Equal(t, 53, rec.Published.Second())
}

func TestExtract_TaxonomyLabelsSortedUnique(t *testing.T) {
	export := exportHeader + samplePost + exportFooter

	records, err := New().Extract(strings.NewReader(export))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Essays", "golang"}, records[0].Labels, "author taxonomy is not a label")
}

func TestExtract_CoverJoinedThroughAttachment(t *testing.T) {
	export := exportHeader + samplePost + sampleAttachment + exportFooter

	records, err := New().Extract(strings.NewReader(export))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/uploads/cover.jpg", records[0].Cover)
}

func TestExtract_MissingAttachmentYieldsNoCover(t *testing.T) {
	export := exportHeader + samplePost + exportFooter

	records, err := New().Extract(strings.NewReader(export))
	require.NoError(t, err)
	assert.Empty(t, records[0].Cover)
}

func TestExtract_DuplicateSlugIsFatal(t *testing.T) {
	export := exportHeader + samplePost + samplePost + exportFooter

	_, err := New().Extract(strings.NewReader(export))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestExtract_MissingSlugIsFatal(t *testing.T) {
	item := `<item>
	<title>No Slug</title>
	<wp:post_id>13</wp:post_id>
	<wp:post_date>2021-01-01 00:00:00</wp:post_date>
	<wp:post_type>post</wp:post_type>
	<wp:status>publish</wp:status>
</item>`
	export := exportHeader + item + exportFooter

	_, err := New().Extract(strings.NewReader(export))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingField)
}
