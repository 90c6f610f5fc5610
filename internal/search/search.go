// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries scholarly and web providers concurrently and
// returns one merged, deduplicated, ranked list of papers.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// Backend searches a single provider. Search never returns an error: a
// provider fault is logged by the backend and yields no papers, so one
// failing provider cannot abort an aggregation.
type Backend interface {
	Source() types.Source

	// Available reports whether the backend has the credentials it needs.
	// Unavailable backends are skipped without being treated as failures.
	Available() bool

	Search(ctx context.Context, query string, limit int) []types.Paper
}

// SearchOutput holds the ranked papers and pipeline statistics.
type SearchOutput struct {
	Papers      []types.Paper
	Queried     []types.Source
	Filtered    int
	DupsRemoved int
}

// Aggregator fans a query out to the enabled backends and merges the results.
type Aggregator struct {
	backends map[types.Source]Backend
	timeout  time.Duration
	log      *zap.Logger
}

// NewAggregator registers backends by source. A later backend for the same
// source replaces an earlier one. timeout bounds each backend invocation;
// zero leaves only the caller's context in charge.
func NewAggregator(log *zap.Logger, timeout time.Duration, backends ...Backend) *Aggregator {
	a := &Aggregator{
		backends: make(map[types.Source]Backend, len(backends)),
		timeout:  timeout,
		log:      orNop(log),
	}
	for _, b := range backends {
		a.backends[b.Source()] = b
	}
	return a
}

// Search runs one aggregation: fan-out, collect, year filter, dedup, sort,
// truncate. It returns an error only for an empty query, invalid filters,
// or a context that ended before the backends settled.
func (a *Aggregator) Search(ctx context.Context, query string, filters types.SearchFilters) (SearchOutput, error) {
	if strings.TrimSpace(query) == "" {
		return SearchOutput{}, fmt.Errorf("query is empty")
	}
	if err := filters.Validate(); err != nil {
		return SearchOutput{}, err
	}

	enabled := filters.EnabledSources()
	if len(enabled) == 0 {
		return SearchOutput{Papers: []types.Paper{}}, nil
	}
	limit := perBackendLimit(filters.MaxResults, len(enabled))

	var selected []Backend
	for _, src := range enabled {
		b, ok := a.backends[src]
		if !ok || !b.Available() {
			a.log.Debug("skipping unavailable provider", zap.String("provider", string(src)))
			continue
		}
		selected = append(selected, b)
	}

	// Each goroutine writes only its own slot.
	batches := make([][]types.Paper, len(selected))
	var wg sync.WaitGroup
	for i, b := range selected {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			batches[i] = a.invoke(ctx, b, query, limit)
		}(i, b)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return SearchOutput{}, fmt.Errorf("search interrupted: %w", err)
	}

	var all []types.Paper
	out := SearchOutput{}
	for i, batch := range batches {
		out.Queried = append(out.Queried, selected[i].Source())
		all = append(all, batch...)
	}

	filtered := filterByYear(all, filters)
	out.Filtered = len(all) - len(filtered)

	deduped, removed := deduplicate(filtered)
	out.DupsRemoved = removed

	sortPapers(deduped, filters.SortBy)

	if len(deduped) > filters.MaxResults {
		deduped = deduped[:filters.MaxResults]
	}
	for i := range deduped {
		if deduped[i].Authors == nil {
			deduped[i].Authors = []string{}
		}
	}
	if deduped == nil {
		deduped = []types.Paper{}
	}
	out.Papers = deduped

	a.log.Info("search complete",
		zap.String("query", query),
		zap.Int("collected", len(all)),
		zap.Int("filtered", out.Filtered),
		zap.Int("duplicates", out.DupsRemoved),
		zap.Int("returned", len(out.Papers)),
	)
	return out, nil
}

// invoke calls one backend under the per-provider timeout. A panic is
// recovered and logged, and the backend contributes nothing.
func (a *Aggregator) invoke(ctx context.Context, b Backend, query string, limit int) (papers []types.Paper) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("provider panicked",
				zap.String("provider", string(b.Source())),
				zap.Any("panic", r),
			)
			papers = nil
		}
	}()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return b.Search(ctx, query, limit)
}

// perBackendLimit splits the result budget evenly, rounding up.
func perBackendLimit(maxResults, sources int) int {
	if sources <= 0 {
		return maxResults
	}
	limit := maxResults / sources
	if maxResults%sources != 0 {
		limit++
	}
	return limit
}

// filterByYear drops papers whose known year falls outside the bounds.
func filterByYear(papers []types.Paper, filters types.SearchFilters) []types.Paper {
	if filters.YearFrom == nil && filters.YearTo == nil {
		return papers
	}
	kept := make([]types.Paper, 0, len(papers))
	for _, p := range papers {
		if filters.InYearRange(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// deduplicate keeps the first paper for each normalized title.
func deduplicate(papers []types.Paper) ([]types.Paper, int) {
	seen := make(map[string]bool, len(papers))
	deduped := make([]types.Paper, 0, len(papers))
	removed := 0
	for _, p := range papers {
		key := NormalizeTitle(p.Title)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		deduped = append(deduped, p)
	}
	return deduped, removed
}

// NormalizeTitle lower-cases title and drops every character that is not
// an ASCII letter or digit, so "Deep-Learning Survey!!" and "deep learning
// survey" share the key "deeplearningsurvey".
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sortPapers orders papers in place. The sort is stable, so papers with
// equal keys keep their post-dedup order.
func sortPapers(papers []types.Paper, by types.SortBy) {
	var less func(i, j int) bool
	switch by {
	case types.SortDate:
		less = func(i, j int) bool {
			return papers[i].YearOrZero() > papers[j].YearOrZero()
		}
	case types.SortCitations:
		less = func(i, j int) bool {
			return papers[i].CitationsOrZero() > papers[j].CitationsOrZero()
		}
	default:
		less = func(i, j int) bool {
			pi, pj := papers[i].Source.Priority(), papers[j].Source.Priority()
			if pi != pj {
				return pi > pj
			}
			return papers[i].YearOrZero() > papers[j].YearOrZero()
		}
	}
	sort.SliceStable(papers, less)
}

// FormatTable writes papers as a human-readable table to w.
func FormatTable(out SearchOutput, w io.Writer) {
	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-9s  %s\n",
		"Rank", "Title", "Authors", "Year", "Citations", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 116))

	for i, p := range out.Papers {
		year := ""
		if p.Year != nil {
			year = fmt.Sprintf("%d", *p.Year)
		}
		cites := ""
		if p.Citations != nil {
			cites = fmt.Sprintf("%d", *p.Citations)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-9s  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), year, cites, p.Source)
	}

	fmt.Fprintf(w, "\n%d results", len(out.Papers))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(out SearchOutput, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
