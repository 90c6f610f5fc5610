// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/httputil"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticFields       = "title,authors,year,citationCount,referenceCount,abstract,url,externalIds"
	semanticDetailFields = semanticFields + ",fieldsOfStudy,journal"
)

// SemanticScholarBackend queries the Semantic Scholar Graph API. The API
// key is optional and only raises rate limits.
type SemanticScholarBackend struct {
	Client     *http.Client
	UserAgent  string
	APIKey     string
	MaxRetries int
	Log        *zap.Logger
}

// Source returns the backend identifier.
func (b *SemanticScholarBackend) Source() types.Source { return types.SourceSemanticScholar }

// Available is always true; the API key is optional.
func (b *SemanticScholarBackend) Available() bool { return true }

// Search queries the paper search endpoint. Failures are logged and yield
// no papers.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, limit int) []types.Paper {
	papers, err := b.search(ctx, query, limitOrDefault(limit))
	if err != nil {
		logFailure(b.Log, b.Source(), "search", query, err)
		return nil
	}
	return papers
}

// Details fetches one paper with the extended field set (fields of study,
// journal). It returns nil when the paper cannot be fetched.
func (b *SemanticScholarBackend) Details(ctx context.Context, id string) *types.Paper {
	p, err := b.details(ctx, id)
	if err != nil {
		logFailure(b.Log, b.Source(), "details", id, err)
		return nil
	}
	return p
}

func (b *SemanticScholarBackend) search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	var sr semanticResponse
	if err := b.getJSON(ctx, semanticAPIBase+"/paper/search?"+params.Encode(), &sr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, sp := range sr.Data {
		papers = append(papers, sp.toPaper())
	}
	return papers, nil
}

func (b *SemanticScholarBackend) details(ctx context.Context, id string) (*types.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("empty paper id")
	}
	params := url.Values{"fields": {semanticDetailFields}}

	var sp semanticPaper
	if err := b.getJSON(ctx, semanticAPIBase+"/paper/"+id+"?"+params.Encode(), &sp); err != nil {
		return nil, err
	}

	p := sp.toPaper()
	if sp.Journal != nil {
		p.Journal = strings.TrimSpace(sp.Journal.Name)
	}
	if len(sp.FieldsOfStudy) > 0 {
		p.Category = strings.Join(sp.FieldsOfStudy, ", ")
	}
	return &p, nil
}

// getJSON performs a GET with 429 backoff and decodes a 200 body into v.
func (b *SemanticScholarBackend) getJSON(ctx context.Context, reqURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, b.MaxRetries)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures. Nullable numbers are pointers so
// that a missing count stays absent.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID        string               `json:"paperId"`
	Title          string               `json:"title"`
	Abstract       string               `json:"abstract"`
	Year           *int                 `json:"year"`
	URL            string               `json:"url"`
	CitationCount  *int                 `json:"citationCount"`
	ReferenceCount *int                 `json:"referenceCount"`
	Authors        []semanticAuthor     `json:"authors"`
	ExternalIDs    *semanticExternalIDs `json:"externalIds"`
	FieldsOfStudy  []string             `json:"fieldsOfStudy"`
	Journal        *semanticJournal     `json:"journal"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}

type semanticJournal struct {
	Name string `json:"name"`
}

func (sp semanticPaper) toPaper() types.Paper {
	var doi string
	if sp.ExternalIDs != nil {
		doi = sp.ExternalIDs.DOI
	}

	p := types.Paper{
		ID:         sp.PaperID,
		Title:      sp.Title,
		Abstract:   sp.Abstract,
		Authors:    []string{},
		Year:       sp.Year,
		URL:        sp.URL,
		Source:     types.SourceSemanticScholar,
		Citations:  sp.CitationCount,
		References: sp.ReferenceCount,
		DOI:        doi,
	}
	switch {
	case p.ID != "":
	case doi != "":
		p.ID = doi
	default:
		p.ID = newID("s2")
	}

	for _, a := range sp.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	return p
}
