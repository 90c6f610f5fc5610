// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SavedPaper is a paper a user has bookmarked. The pair (UserID, PaperID)
// is unique.
type SavedPaper struct {
	ID       string    `json:"id" yaml:"id"`
	UserID   string    `json:"user_id" yaml:"user_id"`
	PaperID  string    `json:"paper_id" yaml:"paper_id"`
	Title    string    `json:"title" yaml:"title"`
	Authors  []string  `json:"authors" yaml:"authors"`
	Abstract string    `json:"abstract" yaml:"abstract"`
	URL      string    `json:"url" yaml:"url"`
	Source   string    `json:"source" yaml:"source"`
	SavedAt  time.Time `json:"saved_at" yaml:"saved_at"`

	// Notes and Tags are optional user annotations.
	Notes *string  `json:"notes" yaml:"notes,omitempty"`
	Tags  []string `json:"tags" yaml:"tags,omitempty"`
}

// SearchHistoryEntry records one search a user ran.
type SearchHistoryEntry struct {
	ID           string         `json:"id" yaml:"id"`
	UserID       string         `json:"user_id" yaml:"user_id"`
	Query        string         `json:"query" yaml:"query"`
	Filters      *SearchFilters `json:"filters" yaml:"filters,omitempty"`
	ResultsCount int            `json:"results_count" yaml:"results_count"`
	SearchedAt   time.Time      `json:"searched_at" yaml:"searched_at"`
}
