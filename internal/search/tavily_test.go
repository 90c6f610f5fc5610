// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

func withTavilyServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	old := tavilyAPIBase
	tavilyAPIBase = ts.URL
	t.Cleanup(func() { tavilyAPIBase = old })
	return ts
}

func TestTavilySearchRequest(t *testing.T) {
	var (
		gotMethod, gotAuth, gotType string
		gotBody                     map[string]any
	)
	ts := withTavilyServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, `{"results":[]}`)
	})

	b := &TavilyBackend{Client: ts.Client(), APIKey: "tvly-key"}
	b.Search(context.Background(), "latest fusion results", 7)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer tvly-key", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "latest fusion results", gotBody["query"])
	assert.Equal(t, "advanced", gotBody["search_depth"])
	assert.Equal(t, float64(7), gotBody["max_results"])
	assert.Equal(t, true, gotBody["include_answer"])
	assert.Equal(t, true, gotBody["include_raw_content"])
	assert.Equal(t, false, gotBody["include_images"], "include_images must be sent explicitly")
	assert.Equal(t, "general", gotBody["topic"])
}

func TestTavilySearchMapsResults(t *testing.T) {
	ts := withTavilyServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"answer":"42","results":[
			{"title":"Page One","url":"https://a.example","content":"Snippet one.","raw_content":"Written by Jane Doe and John Roe. Full text.","score":0.91},
			{"title":"Page Two","url":"https://b.example","content":"","raw_content":"Raw only."}
		]}`)
	})

	b := &TavilyBackend{Client: ts.Client(), APIKey: "k"}
	papers := b.Search(context.Background(), "the answer", 5)
	require.Len(t, papers, 2)

	for _, p := range papers {
		assert.Equal(t, "42", p.Summary)
		assert.Equal(t, types.SourceTavily, p.Source)
		assert.True(t, strings.HasPrefix(p.ID, "tavily-"))
		assert.Nil(t, p.Year)
	}
	assert.NotEqual(t, papers[0].ID, papers[1].ID)

	first := papers[0]
	assert.Equal(t, "Page One", first.Title)
	assert.Equal(t, "https://a.example", first.URL)
	assert.Equal(t, "Snippet one.", first.Abstract)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, first.Authors)
	require.NotNil(t, first.RelevanceScore)
	assert.InDelta(t, 0.91, *first.RelevanceScore, 1e-9)

	second := papers[1]
	assert.Equal(t, "Raw only.", second.Abstract, "raw content used when content is empty")
	assert.Nil(t, second.RelevanceScore)
	assert.NotNil(t, second.Authors)
}

func TestTavilyMissingKey(t *testing.T) {
	var called bool
	withTavilyServer(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
	})
	core, logs := observer.New(zapcore.WarnLevel)

	b := &TavilyBackend{Client: http.DefaultClient, Log: zap.New(core)}
	assert.False(t, b.Available())
	assert.Empty(t, b.Search(context.Background(), "q", 5))
	assert.False(t, called, "no request without a key")
	assert.Equal(t, 1, logs.FilterMessage("provider request failed").Len())
}

func TestTavilyHTTPError(t *testing.T) {
	ts := withTavilyServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"invalid api key"}`)
	})
	core, logs := observer.New(zapcore.WarnLevel)

	b := &TavilyBackend{Client: ts.Client(), APIKey: "bad", Log: zap.New(core)}
	assert.Empty(t, b.Search(context.Background(), "q", 5))

	entries := logs.FilterMessage("provider request failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "invalid api key")
}
