// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholarsync service:
// the canonical Paper record that flows through the search pipeline, the
// per-request SearchFilters, and configuration for each component.
package types

import (
	"fmt"
	"strings"
)

// Source identifies the provider a Paper came from. The set is closed.
type Source string

const (
	// SourceArxiv is the arXiv Atom feed (scholarly metadata, XML).
	SourceArxiv Source = "arxiv"
	// SourceSemanticScholar is the Semantic Scholar Graph API (scholarly metadata, JSON).
	SourceSemanticScholar Source = "semantic-scholar"
	// SourceTavily is the Tavily web search API.
	SourceTavily Source = "tavily"
	// SourceWolfram is the WolframAlpha computational engine.
	SourceWolfram Source = "wolfram"
)

// AllSources lists every known source in priority order.
var AllSources = []Source{SourceSemanticScholar, SourceArxiv, SourceTavily, SourceWolfram}

// ParseSource converts a string to a Source, rejecting unknown values.
func ParseSource(s string) (Source, error) {
	src := Source(strings.TrimSpace(s))
	if !src.Valid() {
		return "", fmt.Errorf("unknown source %q", s)
	}
	return src, nil
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceArxiv, SourceSemanticScholar, SourceTavily, SourceWolfram:
		return true
	}
	return false
}

// Priority is the fixed relevance rank of a source. Higher ranks first.
func (s Source) Priority() int {
	switch s {
	case SourceSemanticScholar:
		return 4
	case SourceArxiv:
		return 3
	case SourceTavily:
		return 2
	case SourceWolfram:
		return 1
	}
	return 0
}

// Paper is the canonical search result. Every Paper carries ID, Title,
// Authors, Abstract, URL, and Source. The remaining fields depend on the
// provider and are left absent (nil or empty, omitted from JSON) rather
// than defaulted when the provider does not supply them.
type Paper struct {
	// ID is the provider identifier, or a generated token for providers
	// without native IDs. Unique within one search response.
	ID string `json:"id" yaml:"id"`

	// Title is the paper or result title. May be empty.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order. May be empty.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the abstract, snippet, or computed content.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the publication year when known.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// URL is the canonical link to the source.
	URL string `json:"url" yaml:"url"`

	// Source identifies which provider found this paper.
	Source Source `json:"source" yaml:"source"`

	PDFURL     string   `json:"pdfUrl,omitempty" yaml:"pdf_url,omitempty"`
	DOI        string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Journal    string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	Citations  *int     `json:"citations,omitempty" yaml:"citations,omitempty"`
	References *int     `json:"references,omitempty" yaml:"references,omitempty"`
	Category   string   `json:"category,omitempty" yaml:"category,omitempty"`

	// Summary is the synthesized answer returned by the web search
	// provider, copied onto every result of that call.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// RelevanceScore is the web search provider's per-result score.
	RelevanceScore *float64 `json:"relevanceScore,omitempty" yaml:"relevance_score,omitempty"`

	// Published and Updated are the raw arXiv date strings.
	Published string `json:"published,omitempty" yaml:"published,omitempty"`
	Updated   string `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// YearOrZero returns the publication year, or 0 when it is unknown.
func (p Paper) YearOrZero() int {
	if p.Year == nil {
		return 0
	}
	return *p.Year
}

// CitationsOrZero returns the citation count, or 0 when it is unknown.
func (p Paper) CitationsOrZero() int {
	if p.Citations == nil {
		return 0
	}
	return *p.Citations
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
