package localize

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/presspipe/core/refs"
)

func newTestLocalizer(t *testing.T) (*Localizer, string) {
	t.Helper()
	dir := t.TempDir()
	loc, err := New(Options{AssetDir: dir, Prefix: "/images/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return loc, dir
}

func TestLocalize_ExactlyOnceAcrossDocuments(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "image-bytes")
	}))
	defer srv.Close()

	loc, dir := newTestLocalizer(t)
	uri := srv.URL + "/uploads/shared.png"

	table := refs.NewTable()
	table.Add(uri, "post-one")
	table.Add(uri, "post-two")
	require.NoError(t, loc.Localize(context.Background(), table))

	assert.Equal(t, int64(1), hits.Load(), "one fetch for N referencing documents")
	resolved := table.Resolved()
	assert.Equal(t, "/images/shared.png", resolved[uri])

	data, err := os.ReadFile(filepath.Join(dir, "shared.png"))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocalize_IdempotentShortCircuit(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "image-bytes")
	}))
	defer srv.Close()

	loc, _ := newTestLocalizer(t)
	uri := srv.URL + "/uploads/once.png"

	for run := 0; run < 2; run++ {
		table := refs.NewTable()
		table.Add(uri, "post")
		require.NoError(t, loc.Localize(context.Background(), table))
		assert.Equal(t, "/images/once.png", table.Resolved()[uri], "run %d", run)
	}
	assert.Equal(t, int64(1), hits.Load(), "existing artifact must short-circuit re-fetch")
}

func redirectChainServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(r.URL.Path[len("/hop/"):])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if n == 0 {
			fmt.Fprint(w, "final")
			return
		}
		http.Redirect(w, r, fmt.Sprintf("%s/hop/%d", srv.URL, n-1), http.StatusMovedPermanently)
	})
	srv = httptest.NewServer(mux)
	return srv
}

func TestLocalize_RedirectBound(t *testing.T) {
	srv := redirectChainServer(t)
	defer srv.Close()

	loc, _ := newTestLocalizer(t)

	okURI := srv.URL + "/hop/5"
	badURI := srv.URL + "/hop/6"
	table := refs.NewTable()
	table.Add(okURI, "post")
	table.Add(badURI, "post")
	require.NoError(t, loc.Localize(context.Background(), table))

	assert.NotEmpty(t, table.Resolved()[okURI], "a chain of exactly 5 redirects succeeds")

	failures := table.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, badURI, failures[0].URI)
	assert.Contains(t, failures[0].Reason, "too many redirects")
}

func TestLocalize_NonSuccessResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	loc, _ := newTestLocalizer(t)
	uri := srv.URL + "/missing.png"
	table := refs.NewTable()
	table.Add(uri, "post")
	require.NoError(t, loc.Localize(context.Background(), table))

	failures := table.Failures()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "status 404")
	assert.Empty(t, table.Resolved())
}

func TestLocalize_FailureIsolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.png" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	loc, _ := newTestLocalizer(t)
	good := srv.URL + "/good.png"
	bad := srv.URL + "/bad.png"
	table := refs.NewTable()
	table.Add(good, "post")
	table.Add(bad, "post")
	require.NoError(t, loc.Localize(context.Background(), table))

	assert.Equal(t, "/images/good.png", table.Resolved()[good])
	require.Len(t, table.Failures(), 1)
}

func TestAssignNames_CollisionDisambiguatedDeterministically(t *testing.T) {
	loc, _ := newTestLocalizer(t)
	pending := []*refs.Reference{
		{URI: "https://a.example/uploads/pic.png"},
		{URI: "https://b.example/uploads/pic.png"},
	}

	first, err := loc.assignNames(pending)
	require.NoError(t, err)
	second, err := loc.assignNames(pending)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated runs produce the same names")

	nameA := first["https://a.example/uploads/pic.png"]
	nameB := first["https://b.example/uploads/pic.png"]
	assert.Equal(t, "pic.png", nameA)
	assert.NotEqual(t, nameA, nameB)
	assert.Contains(t, nameB, "pic-")
	assert.Contains(t, nameB, ".png")
}

func TestAssignNames_StableAcrossPartialPendingSets(t *testing.T) {
	loc, _ := newTestLocalizer(t)
	uriA := "https://a.example/uploads/pic.png"
	uriB := "https://b.example/uploads/pic.png"

	full, err := loc.assignNames([]*refs.Reference{{URI: uriA}, {URI: uriB}})
	require.NoError(t, err)

	// A later run where only the disambiguated URI is still pending must
	// reuse the recorded name, never fall back to the bare one that
	// belongs to the other URI's artifact.
	partial, err := loc.assignNames([]*refs.Reference{{URI: uriB}})
	require.NoError(t, err)
	assert.Equal(t, full[uriB], partial[uriB])
	assert.NotEqual(t, "pic.png", partial[uriB])
}

func TestLocalize_RerunAfterPartialFailureKeepsArtifactsApart(t *testing.T) {
	var bFailures atomic.Int64
	bFailures.Store(1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a/pic.png":
			fmt.Fprint(w, "bytes-a")
		case "/b/pic.png":
			if bFailures.Add(-1) >= 0 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, "bytes-b")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loc, dir := newTestLocalizer(t)
	uriA := srv.URL + "/a/pic.png"
	uriB := srv.URL + "/b/pic.png"

	first := refs.NewTable()
	first.Add(uriA, "post")
	first.Add(uriB, "post")
	require.NoError(t, loc.Localize(context.Background(), first))
	require.Len(t, first.Failures(), 1)
	assert.Equal(t, "/images/pic.png", first.Resolved()[uriA])

	// On the retry A's document has already been rewritten to its local
	// path, so only B is collected. B must keep its disambiguated name
	// and fetch its own bytes, never short-circuit on A's artifact.
	second := refs.NewTable()
	second.Add(uriB, "post")
	require.NoError(t, loc.Localize(context.Background(), second))
	require.Empty(t, second.Failures())
	localB := second.Resolved()[uriB]
	assert.NotEqual(t, "/images/pic.png", localB)

	dataA, err := os.ReadFile(filepath.Join(dir, "pic.png"))
	require.NoError(t, err)
	dataB, err := os.ReadFile(filepath.Join(dir, filepath.Base(localB)))
	require.NoError(t, err)
	assert.Equal(t, "bytes-a", string(dataA))
	assert.Equal(t, "bytes-b", string(dataB))
}

func TestLocalName_QueryStrippedAndSanitized(t *testing.T) {
	assert.Equal(t, "photo.jpg", localName("https://cdn.example/a/b/photo.jpg?w=1200&h=800"))
	assert.Equal(t, "we_ird_name.png", sanitize("we+ird name.png"))
	assert.Contains(t, localName("https://cdn.example/"), "asset-")
}
