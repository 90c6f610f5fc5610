// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// tavilyAPIBase is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com/search"

// TavilyBackend queries the Tavily web search API. It needs an API key.
type TavilyBackend struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
	Log       *zap.Logger
}

// Source returns the backend identifier.
func (b *TavilyBackend) Source() types.Source { return types.SourceTavily }

// Available reports whether an API key is configured.
func (b *TavilyBackend) Available() bool { return b.APIKey != "" }

// Search runs an advanced Tavily search. Failures, including a missing
// key, are logged and yield no papers.
func (b *TavilyBackend) Search(ctx context.Context, query string, limit int) []types.Paper {
	papers, err := b.search(ctx, query, limitOrDefault(limit))
	if err != nil {
		logFailure(b.Log, b.Source(), "search", query, err)
		return nil
	}
	return papers
}

// tavilyRequest is the fixed advanced-search configuration. Booleans are
// not omitempty: include_images=false must be sent explicitly.
type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
	IncludeImages     bool   `json:"include_images"`
	Topic             string `json:"topic"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Content    string   `json:"content"`
	RawContent string   `json:"raw_content"`
	Score      *float64 `json:"score"`
}

func (b *TavilyBackend) search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("missing Tavily API key")
	}

	body, err := json.Marshal(tavilyRequest{
		Query:             query,
		SearchDepth:       "advanced",
		MaxResults:        limit,
		IncludeAnswer:     true,
		IncludeRawContent: true,
		IncludeImages:     false,
		Topic:             "general",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilyAPIBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Tavily API returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}

	papers := make([]types.Paper, 0, len(tr.Results))
	for _, r := range tr.Results {
		papers = append(papers, types.Paper{
			ID:             newID("tavily"),
			Title:          r.Title,
			Authors:        ExtractAuthors(firstNonEmpty(r.RawContent, r.Content)),
			Abstract:       firstNonEmpty(r.Content, r.RawContent),
			URL:            r.URL,
			Source:         types.SourceTavily,
			Summary:        tr.Answer,
			RelevanceScore: r.Score,
		})
	}
	return papers, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
