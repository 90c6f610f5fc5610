// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidFilters is wrapped by every SearchFilters validation failure.
var ErrInvalidFilters = errors.New("invalid search filters")

// SortBy selects the ordering of aggregated results.
type SortBy string

const (
	SortRelevance SortBy = "relevance"
	SortDate      SortBy = "date"
	SortCitations SortBy = "citations"
)

// DefaultMaxResults is the result cap used when a request supplies no filters.
const DefaultMaxResults = 20

// MaxResultsLimit is the largest accepted MaxResults. Each provider is asked
// for a single page, so larger caps cannot be honoured.
const MaxResultsLimit = 100

// SearchFilters is the request-scoped configuration for one aggregation.
// It is passed by value and never mutated by the search pipeline.
type SearchFilters struct {
	// Sources lists the enabled providers. An empty list yields no results.
	Sources []Source `json:"sources" yaml:"sources"`

	// YearFrom and YearTo are inclusive bounds on the publication year.
	YearFrom *int `json:"yearFrom,omitempty" yaml:"year_from,omitempty"`
	YearTo   *int `json:"yearTo,omitempty" yaml:"year_to,omitempty"`

	// SortBy selects the result ordering. Empty means relevance.
	SortBy SortBy `json:"sortBy" yaml:"sort_by"`

	// MaxResults caps the size of the final result list.
	MaxResults int `json:"maxResults" yaml:"max_results"`
}

// DefaultFilters returns a fresh filter value enabling every source.
func DefaultFilters() SearchFilters {
	sources := make([]Source, len(AllSources))
	copy(sources, AllSources)
	return SearchFilters{
		Sources:    sources,
		SortBy:     SortRelevance,
		MaxResults: DefaultMaxResults,
	}
}

// Validate checks the filters for values the pipeline cannot honour.
func (f SearchFilters) Validate() error {
	for _, s := range f.Sources {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown source %q", ErrInvalidFilters, s)
		}
	}
	if f.MaxResults <= 0 {
		return fmt.Errorf("%w: maxResults must be positive, got %d", ErrInvalidFilters, f.MaxResults)
	}
	if f.MaxResults > MaxResultsLimit {
		return fmt.Errorf("%w: maxResults must be at most %d, got %d", ErrInvalidFilters, MaxResultsLimit, f.MaxResults)
	}
	switch f.SortBy {
	case "", SortRelevance, SortDate, SortCitations:
	default:
		return fmt.Errorf("%w: unknown sortBy %q", ErrInvalidFilters, f.SortBy)
	}
	if f.YearFrom != nil && f.YearTo != nil && *f.YearFrom > *f.YearTo {
		return fmt.Errorf("%w: yearFrom %d is after yearTo %d", ErrInvalidFilters, *f.YearFrom, *f.YearTo)
	}
	return nil
}

// EnabledSources returns the requested sources with duplicates removed,
// preserving request order.
func (f SearchFilters) EnabledSources() []Source {
	seen := make(map[Source]bool, len(f.Sources))
	var out []Source
	for _, s := range f.Sources {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// InYearRange reports whether p passes the year bounds. A paper with no
// known year always passes.
func (f SearchFilters) InYearRange(p Paper) bool {
	if p.Year == nil {
		return true
	}
	if f.YearFrom != nil && *p.Year < *f.YearFrom {
		return false
	}
	if f.YearTo != nil && *p.Year > *f.YearTo {
		return false
	}
	return true
}
