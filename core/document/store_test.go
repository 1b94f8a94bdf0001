package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WriteReadList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2022, time.May, 4, 12, 0, 0, 0, time.UTC)
	for _, slug := range []string{"beta", "alpha"} {
		_, err := store.Write(&Document{
			Slug:   slug,
			Header: NewHeader("Title "+slug, slug, "", "", nil, now),
			Body:   "body of " + slug,
		})
		require.NoError(t, err)
	}

	slugs, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, slugs)

	doc, err := store.Read("alpha")
	require.NoError(t, err)
	assert.Equal(t, "Title alpha", doc.Header.Title)
	assert.Equal(t, "body of alpha", doc.Body)
}

func TestStore_RewriteReplacesFile(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	doc := &Document{Slug: "post", Header: NewHeader("T", "post", "", "", nil, time.Now()), Body: "v1"}
	_, err = store.Write(doc)
	require.NoError(t, err)

	doc.Body = "v2"
	_, err = store.Write(doc)
	require.NoError(t, err)

	got, err := store.Read("post")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Body)

	slugs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, slugs, 1)
}
