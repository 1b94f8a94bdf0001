package redirects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/presspipe/core"
)

func TestFromRecords(t *testing.T) {
	records := []core.ContentRecord{
		{Slug: "first-post", Permalink: "/2021/03/first-post/"},
		{Slug: "no-permalink"},
		{Slug: "already-there", Permalink: "/posts/already-there/"},
	}

	rules := FromRecords(records, "posts")
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{From: "/2021/03/first-post/", To: "/posts/first-post/", Status: 301}, rules[0])
}

func TestWrite_PlainFormat(t *testing.T) {
	var b strings.Builder
	err := Write(&b, []Rule{{From: "/old/", To: "/posts/new/", Status: 301}}, Plain)
	require.NoError(t, err)
	assert.Equal(t, "/old/ /posts/new/ 301\n", b.String())
}
