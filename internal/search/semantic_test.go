// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/httputil"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

func withSemanticServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() { semanticAPIBase = old })
	return ts
}

// --- Request construction (URL params, headers) ---

func TestSemanticSearchRequestParams(t *testing.T) {
	var capturedReq *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total":0,"offset":0,"data":[]}`)
	})

	b := &SemanticScholarBackend{Client: ts.Client(), UserAgent: "scholarsync-test"}
	papers := b.Search(context.Background(), "attention", 15)
	assert.Empty(t, papers)

	require.NotNil(t, capturedReq)
	assert.Equal(t, "/paper/search", capturedReq.URL.Path)
	q := capturedReq.URL.Query()
	assert.Equal(t, "attention", q.Get("query"))
	assert.Equal(t, "15", q.Get("limit"))
	assert.Equal(t, semanticFields, q.Get("fields"))
	assert.Equal(t, "scholarsync-test", capturedReq.Header.Get("User-Agent"))
	assert.Empty(t, capturedReq.Header.Get("x-api-key"), "no key configured")
}

func TestSemanticSearchAPIKeyHeader(t *testing.T) {
	var gotKey string
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		fmt.Fprint(w, `{"data":[]}`)
	})

	b := &SemanticScholarBackend{Client: ts.Client(), APIKey: "s2-secret"}
	b.Search(context.Background(), "q", 1)
	assert.Equal(t, "s2-secret", gotKey)
}

// --- Response mapping ---

func TestSemanticSearchMapsPapers(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total":3,"offset":0,"data":[
			{"paperId":"abc123","title":"Attention Is All You Need","abstract":"Transformers.",
			 "year":2017,"url":"https://www.semanticscholar.org/paper/abc123",
			 "citationCount":90000,"referenceCount":40,
			 "authors":[{"authorId":"1","name":"Ashish Vaswani"},{"authorId":"2","name":""}],
			 "externalIds":{"DOI":"10.5555/3295222.3295349","ArXiv":"1706.03762"}},
			{"paperId":"","title":"DOI Only","externalIds":{"DOI":"10.1234/x"}},
			{"paperId":"","title":"Nothing","year":null,"citationCount":null,"authors":null}
		]}`)
	})

	b := &SemanticScholarBackend{Client: ts.Client()}
	papers := b.Search(context.Background(), "attention", 3)
	require.Len(t, papers, 3)

	p := papers[0]
	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, "Attention Is All You Need", p.Title)
	assert.Equal(t, []string{"Ashish Vaswani"}, p.Authors)
	assert.Equal(t, 2017, *p.Year)
	assert.Equal(t, 90000, *p.Citations)
	assert.Equal(t, 40, *p.References)
	assert.Equal(t, "10.5555/3295222.3295349", p.DOI)
	assert.Equal(t, types.SourceSemanticScholar, p.Source)

	assert.Equal(t, "10.1234/x", papers[1].ID, "DOI used when paperId is missing")

	last := papers[2]
	assert.True(t, strings.HasPrefix(last.ID, "s2-"), "generated id, got %q", last.ID)
	assert.Nil(t, last.Year)
	assert.Nil(t, last.Citations)
	assert.NotNil(t, last.Authors)
}

// --- Error handling ---

func TestSemanticSearchHTTPErrors(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			})
			b := &SemanticScholarBackend{Client: ts.Client()}
			assert.Empty(t, b.Search(context.Background(), "q", 5))
		})
	}
}

func TestSemanticSearchMalformedJSON(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[{`)
	})
	b := &SemanticScholarBackend{Client: ts.Client()}
	assert.Empty(t, b.Search(context.Background(), "q", 5))
}

func TestSemanticSearchRetriesOn429(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	var calls int32
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"data":[{"paperId":"p1","title":"After Backoff"}]}`)
	})

	b := &SemanticScholarBackend{Client: ts.Client(), MaxRetries: 2}
	papers := b.Search(context.Background(), "q", 5)
	require.Len(t, papers, 1)
	assert.Equal(t, "After Backoff", papers[0].Title)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// --- Details ---

func TestSemanticDetails(t *testing.T) {
	var gotPath, gotFields string
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		fmt.Fprint(w, `{"paperId":"abc123","title":"Attention Is All You Need","year":2017,
			"fieldsOfStudy":["Computer Science","Mathematics"],
			"journal":{"name":" NeurIPS "}}`)
	})

	b := &SemanticScholarBackend{Client: ts.Client()}
	p := b.Details(context.Background(), "abc123")
	require.NotNil(t, p)

	assert.Equal(t, "/paper/abc123", gotPath)
	assert.Equal(t, semanticDetailFields, gotFields)
	assert.Equal(t, "NeurIPS", p.Journal)
	assert.Equal(t, "Computer Science, Mathematics", p.Category)
	assert.Equal(t, "abc123", p.ID)
}

func TestSemanticDetailsFailures(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	b := &SemanticScholarBackend{Client: ts.Client()}

	assert.Nil(t, b.Details(context.Background(), "missing"))
	assert.Nil(t, b.Details(context.Background(), "  "))
}
