// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Client    *http.Client
	UserAgent string
	Log       *zap.Logger
}

// Source returns the backend identifier.
func (b *ArxivBackend) Source() types.Source { return types.SourceArxiv }

// Available is always true; arXiv needs no credential.
func (b *ArxivBackend) Available() bool { return true }

// Search queries arXiv for up to limit entries. Failures are logged and
// yield no papers.
func (b *ArxivBackend) Search(ctx context.Context, query string, limit int) []types.Paper {
	papers, err := b.search(ctx, query, limitOrDefault(limit))
	if err != nil {
		logFailure(b.Log, b.Source(), "search", query, err)
		return nil
	}
	return papers
}

func (b *ArxivBackend) search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	reqURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, entry.toPaper())
	}
	return papers, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Links      []arxivLink     `xml:"link"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

func (e arxivEntry) toPaper() types.Paper {
	idURL := strings.TrimSpace(e.ID)

	p := types.Paper{
		ID:        lastPathSegment(idURL),
		Title:     collapseSpace(e.Title),
		Abstract:  collapseSpace(e.Summary),
		Authors:   []string{},
		URL:       idURL,
		Source:    types.SourceArxiv,
		PDFURL:    e.pdfLink(idURL),
		Published: strings.TrimSpace(e.Published),
		Updated:   strings.TrimSpace(e.Updated),
		Year:      publishedYear(e.Published),
	}
	if p.ID == "" {
		p.ID = newID("arxiv")
	}

	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if len(e.Categories) > 0 {
		p.Category = strings.TrimSpace(e.Categories[0].Term)
	}
	return p
}

// pdfLink returns the entry's explicit PDF link, or derives one from the
// abstract URL (".../abs/2301.07041v1" -> ".../pdf/2301.07041v1").
func (e arxivEntry) pdfLink(idURL string) string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Rel == "pdf" {
			return l.Href
		}
	}
	if idURL == "" {
		return ""
	}
	return strings.Replace(idURL, "/abs/", "/pdf/", 1)
}

// lastPathSegment returns the text after the final "/" of an id URI
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041v1").
func lastPathSegment(idURL string) string {
	idURL = strings.TrimRight(idURL, "/")
	if i := strings.LastIndex(idURL, "/"); i >= 0 {
		return idURL[i+1:]
	}
	return idURL
}

// publishedYear extracts the calendar year from an arXiv timestamp.
func publishedYear(published string) *int {
	published = strings.TrimSpace(published)
	if published == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, published); err == nil {
		return types.IntPtr(t.Year())
	}
	if len(published) >= 4 {
		if y, err := strconv.Atoi(published[:4]); err == nil {
			return types.IntPtr(y)
		}
	}
	return nil
}
