package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysticvn/boitoan/internal/config"
)

// newTestServer serves a minimal MediaWiki API: full-text search plus intro
// extracts, backed by the articles map (title -> extract).
func newTestServer(t *testing.T, articles map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case q.Get("list") == "search":
			term := q.Get("srsearch")
			if _, ok := articles[term]; !ok {
				fmt.Fprint(w, `{"query":{"search":[]}}`)
				return
			}
			fmt.Fprintf(w, `{"query":{"search":[{"title":%q,"snippet":"...","pageid":42}]}}`, term)

		case q.Get("prop") == "extracts":
			title := q.Get("titles")
			extract, ok := articles[title]
			if !ok {
				fmt.Fprintf(w, `{"query":{"pages":{"-1":{"title":%q,"missing":""}}}}`, title)
				return
			}
			fmt.Fprintf(w, `{"query":{"pages":{"42":{"pageid":42,"title":%q,"extract":%q}}}}`, title, extract)

		default:
			http.Error(w, "unexpected request", http.StatusBadRequest)
		}
	}))
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(config.WikipediaConfig{
		BaseURL:        srv.URL + "/w/api.php",
		SearchLimit:    1,
		TimeoutSeconds: 5,
	})
}

func TestSearchParsesResults(t *testing.T) {
	srv := newTestServer(t, map[string]string{"Tarot": "Tarot là một bộ bài."})
	defer srv.Close()

	results, err := newTestClient(srv).Search(context.Background(), "Tarot")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Tarot", results[0].Title)
	assert.Equal(t, 42, results[0].PageID)
}

func TestSearchZeroResultsIsNotAnError(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	results, err := newTestClient(srv).Search(context.Background(), "không tồn tại")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFetchOneBuildsArticleURL(t *testing.T) {
	srv := newTestServer(t, map[string]string{"Bạch Dương": "Bạch Dương là cung đầu tiên."})
	defer srv.Close()

	ref, err := newTestClient(srv).FetchOne(context.Background(), "Bạch Dương")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "Bạch Dương", ref.Title)
	assert.Equal(t, "Bạch Dương là cung đầu tiên.", ref.Extract)
	// Spaces become underscores and the path is escaped.
	assert.Equal(t, srv.URL+"/wiki/B%E1%BA%A1ch_D%C6%B0%C6%A1ng", ref.URL)
}

func TestFetchOneNoHitReturnsNilNil(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Close()

	ref, err := newTestClient(srv).FetchOne(context.Background(), "không có")
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestSummaryMissingPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"pages":{"-1":{"title":"Ghost","missing":""}}}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Summary(context.Background(), "Ghost")
	assert.Error(t, err)
}

func TestFetchManyPreservesOrderAndIsolatesFailures(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"The Tower": "The Tower là lá bài số 16.",
		"Tarot":     "Tarot là một bộ bài.",
	})
	defer srv.Close()

	refs := newTestClient(srv).FetchMany(context.Background(), []string{"The Tower", "không có", "Tarot"})

	require.Len(t, refs, 3)
	require.NotNil(t, refs[0])
	assert.Equal(t, "The Tower", refs[0].Title)
	assert.Nil(t, refs[1])
	require.NotNil(t, refs[2])
	assert.Equal(t, "Tarot", refs[2].Title)
}

func TestFetchManyServerErrorDegradesToNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	refs := newTestClient(srv).FetchMany(context.Background(), []string{"a", "b"})
	require.Len(t, refs, 2)
	assert.Nil(t, refs[0])
	assert.Nil(t, refs[1])
}

func TestCompact(t *testing.T) {
	a := &Reference{Title: "A"}
	b := &Reference{Title: "B"}
	assert.Equal(t, []*Reference{a, b}, Compact([]*Reference{nil, a, nil, b}))
	assert.Empty(t, Compact([]*Reference{nil, nil}))
}

func TestBuildContext(t *testing.T) {
	refs := []*Reference{
		{Title: "Tarot", Extract: "Một bộ bài.", URL: "https://vi.wikipedia.org/wiki/Tarot"},
		{Title: "Bạch Dương", Extract: "Cung đầu tiên.", URL: "https://vi.wikipedia.org/wiki/B%E1%BA%A1ch_D%C6%B0%C6%A1ng"},
	}
	out := BuildContext(refs)
	assert.Equal(t,
		"**Tarot:**\nMột bộ bài.\nNguồn: https://vi.wikipedia.org/wiki/Tarot\n\n"+
			"**Bạch Dương:**\nCung đầu tiên.\nNguồn: https://vi.wikipedia.org/wiki/B%E1%BA%A1ch_D%C6%B0%C6%A1ng",
		out)
	assert.Equal(t, "", BuildContext(nil))
}
