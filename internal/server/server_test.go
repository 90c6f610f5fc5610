// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/library"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/search"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- fakes and helpers ---

type fakeSearcher struct {
	out     search.SearchOutput
	err     error
	panics  bool
	calls   int
	query   string
	filters types.SearchFilters
}

func (f *fakeSearcher) Search(_ context.Context, query string, filters types.SearchFilters) (search.SearchOutput, error) {
	f.calls++
	f.query, f.filters = query, filters
	if f.panics {
		panic("aggregator exploded")
	}
	return f.out, f.err
}

type failingLibrary struct {
	*library.Store
}

func (failingLibrary) RecordSearch(context.Context, string, string, *types.SearchFilters, int) (types.SearchHistoryEntry, error) {
	return types.SearchHistoryEntry{}, errors.New("disk full")
}

func testLibrary(t *testing.T) *library.Store {
	t.Helper()
	lib, err := library.NewStore(types.LibraryConfig{Path: filepath.Join(t.TempDir(), "library.db")})
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func do(t *testing.T, router http.Handler, method, target, body, user string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func samplePapers() []types.Paper {
	return []types.Paper{
		{ID: "2301.07041v1", Title: "Quantum Paper", Authors: []string{"Alice Smith"}, Source: types.SourceArxiv, Year: types.IntPtr(2023)},
	}
}

// --- POST /search ---

func TestSearchSuccess(t *testing.T) {
	fs := &fakeSearcher{out: search.SearchOutput{Papers: samplePapers()}}
	router := NewRouter(nil, fs, nil)

	w, resp := do(t, router, http.MethodPost, "/search",
		`{"query":"quantum computing","filters":{"sources":["arxiv"],"sortBy":"date","maxResults":5,"yearFrom":2020}}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	papers, ok := resp["papers"].([]any)
	require.True(t, ok)
	require.Len(t, papers, 1)
	first := papers[0].(map[string]any)
	assert.Equal(t, "2301.07041v1", first["id"])
	assert.Equal(t, "arxiv", first["source"])

	assert.Equal(t, "quantum computing", fs.query)
	assert.Equal(t, []types.Source{types.SourceArxiv}, fs.filters.Sources)
	assert.Equal(t, types.SortDate, fs.filters.SortBy)
	assert.Equal(t, 5, fs.filters.MaxResults)
	assert.Equal(t, 2020, *fs.filters.YearFrom)
}

func TestSearchDefaultsFilters(t *testing.T) {
	fs := &fakeSearcher{}
	router := NewRouter(nil, fs, nil)

	w, resp := do(t, router, http.MethodPost, "/search", `{"query":"graph networks"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.DefaultFilters(), fs.filters)
	assert.Equal(t, []any{}, resp["papers"], "empty result is an empty array, not null")
}

func TestSearchBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body", ``, msgQueryRequired},
		{"missing query", `{"filters":{"sources":["arxiv"],"maxResults":5}}`, msgQueryRequired},
		{"empty query", `{"query":""}`, msgQueryRequired},
		{"blank query", `{"query":"   "}`, msgQueryRequired},
		{"wrong type", `{"query":42}`, msgInvalidBody},
		{"malformed json", `{"query":`, msgInvalidBody},
		{"unknown source", `{"query":"x","filters":{"sources":["google"],"maxResults":5}}`, "unknown source"},
		{"zero max results", `{"query":"x","filters":{"sources":["arxiv"],"maxResults":0}}`, "maxResults"},
		{"max results above limit", `{"query":"x","filters":{"sources":["arxiv"],"maxResults":101}}`, "at most 100"},
		{"huge max results", `{"query":"x","filters":{"sources":["arxiv","semantic-scholar"],"maxResults":9223372036854775807}}`, "maxResults"},
		{"bad sort", `{"query":"x","filters":{"sources":["arxiv"],"maxResults":5,"sortBy":"hype"}}`, "sortBy"},
		{"inverted years", `{"query":"x","filters":{"sources":["arxiv"],"maxResults":5,"yearFrom":2024,"yearTo":2020}}`, "yearFrom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSearcher{}
			router := NewRouter(nil, fs, nil)

			w, resp := do(t, router, http.MethodPost, "/search", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, resp["error"], tt.wantErr)
			assert.Equal(t, 0, fs.calls, "aggregator must not run")
		})
	}
}

func TestSearchInternalErrors(t *testing.T) {
	tests := []struct {
		name     string
		searcher *fakeSearcher
		wantLog  string
	}{
		{"aggregation error", &fakeSearcher{err: errors.New("search interrupted: context canceled")}, "search failed"},
		{"panic", &fakeSearcher{panics: true}, "handler panicked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			router := NewRouter(zap.New(core), tt.searcher, nil)

			w, resp := do(t, router, http.MethodPost, "/search", `{"query":"x"}`, "")
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, msgInternal, resp["error"])
			assert.Equal(t, 1, logs.FilterMessage(tt.wantLog).Len())
		})
	}
}

func TestSearchRecordsHistoryForUser(t *testing.T) {
	lib := testLibrary(t)
	fs := &fakeSearcher{out: search.SearchOutput{Papers: samplePapers()}}
	router := NewRouter(nil, fs, lib)

	w, _ := do(t, router, http.MethodPost, "/search", `{"query":"quantum"}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, router, http.MethodPost, "/search", `{"query":"anonymous"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	entries, err := lib.ListHistory(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "quantum", entries[0].Query)
	assert.Equal(t, 1, entries[0].ResultsCount)
}

func TestSearchHistoryFailureIsNotSurfaced(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lib := failingLibrary{testLibrary(t)}
	router := NewRouter(zap.New(core), &fakeSearcher{}, lib)

	w, _ := do(t, router, http.MethodPost, "/search", `{"query":"x"}`, "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("recording search history failed").Len())
}

// --- library routes ---

func TestLibraryRoutesRequireUser(t *testing.T) {
	router := NewRouter(nil, &fakeSearcher{}, testLibrary(t))

	for _, r := range []struct{ method, target, body string }{
		{http.MethodGet, "/saved-papers", ""},
		{http.MethodPost, "/saved-papers", `{"paper_id":"p1"}`},
		{http.MethodDelete, "/saved-papers?paperId=p1", ""},
		{http.MethodGet, "/history", ""},
	} {
		w, resp := do(t, router, r.method, r.target, r.body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.target)
		assert.Equal(t, "Unauthorized", resp["error"])
	}
}

func TestSavedPapersLifecycle(t *testing.T) {
	router := NewRouter(nil, &fakeSearcher{}, testLibrary(t))
	body := `{"paper_id":"2301.07041v1","title":"Quantum Paper","authors":["Alice Smith"],"url":"http://arxiv.org/abs/2301.07041v1","source":"arxiv","tags":["qc"]}`

	w, resp := do(t, router, http.MethodPost, "/saved-papers", body, "u1")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, "2301.07041v1", data["paper_id"])
	assert.Equal(t, "u1", data["user_id"])
	assert.NotEmpty(t, data["id"])

	w, resp = do(t, router, http.MethodPost, "/saved-papers", body, "u1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Paper already saved", resp["error"])

	w, resp = do(t, router, http.MethodGet, "/saved-papers", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 1)

	w, resp = do(t, router, http.MethodDelete, "/saved-papers?paperId=2301.07041v1", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	w, resp = do(t, router, http.MethodGet, "/saved-papers", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, resp["data"])
}

func TestSavedPapersBadRequests(t *testing.T) {
	router := NewRouter(nil, &fakeSearcher{}, testLibrary(t))

	w, resp := do(t, router, http.MethodPost, "/saved-papers", `{"title":"No ID"}`, "u1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "paper_id is required", resp["error"])

	w, resp = do(t, router, http.MethodDelete, "/saved-papers", "", "u1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "paperId is required", resp["error"])
}

func TestHistoryRoute(t *testing.T) {
	lib := testLibrary(t)
	for _, q := range []string{"first", "second", "third"} {
		_, err := lib.RecordSearch(context.Background(), "u1", q, nil, 0)
		require.NoError(t, err)
	}
	router := NewRouter(nil, &fakeSearcher{}, lib)

	w, resp := do(t, router, http.MethodGet, "/history?limit=2", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 2)

	w, resp = do(t, router, http.MethodGet, "/history?limit=abc", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["data"], 3)
}

func TestLibraryRoutesAbsentWithoutStore(t *testing.T) {
	router := NewRouter(nil, &fakeSearcher{}, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/saved-papers", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- health and lifecycle ---

func TestHealth(t *testing.T) {
	router := NewRouter(nil, &fakeSearcher{}, nil)
	w, resp := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp["status"])
}

func TestHTTPServerStartStop(t *testing.T) {
	srv := NewHTTPServer(types.ServerConfig{Host: "127.0.0.1", Port: 0}, nil, &fakeSearcher{}, nil)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	require.NoError(t, srv.Stop(context.Background()))
	assert.NoError(t, <-done)
}
