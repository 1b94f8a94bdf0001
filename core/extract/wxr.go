// Package extract implements the Extractor interface for WordPress
// eXtended RSS (WXR) exports. It normalizes channel items into
// ContentRecords, joining the featured-media pointer through the
// attachment items by post ID.
package extract

// WXR wire types. Both content:encoded and excerpt:encoded have the local
// name "encoded", so the fields are namespace-qualified to disambiguate.

type wxrExport struct {
	Channel wxrChannel `xml:"channel"`
}

type wxrChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []wxrItem `xml:"item"`
}

type wxrItem struct {
	Title         string        `xml:"title"`
	Link          string        `xml:"link"`
	PubDate       string        `xml:"pubDate"`
	Content       string        `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Excerpt       string        `xml:"http://wordpress.org/export/1.2/excerpt/ encoded"`
	PostID        int           `xml:"http://wordpress.org/export/1.2/ post_id"`
	PostDate      string        `xml:"http://wordpress.org/export/1.2/ post_date"`
	PostName      string        `xml:"http://wordpress.org/export/1.2/ post_name"`
	PostType      string        `xml:"http://wordpress.org/export/1.2/ post_type"`
	Status        string        `xml:"http://wordpress.org/export/1.2/ status"`
	AttachmentURL string        `xml:"http://wordpress.org/export/1.2/ attachment_url"`
	Categories    []wxrCategory `xml:"category"`
	Meta          []wxrMeta     `xml:"http://wordpress.org/export/1.2/ postmeta"`
}

type wxrCategory struct {
	Domain string `xml:"domain,attr"`
	Name   string `xml:",chardata"`
}

type wxrMeta struct {
	Key   string `xml:"http://wordpress.org/export/1.2/ meta_key"`
	Value string `xml:"http://wordpress.org/export/1.2/ meta_value"`
}
