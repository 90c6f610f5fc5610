// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results.
// A saved search can be reloaded and re-displayed without querying the
// providers again.
type QueryFile struct {
	Query   string              `yaml:"query"`
	Filters types.SearchFilters `yaml:"filters"`
	Results []types.Paper       `yaml:"results"`
	Summary QuerySummary        `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total             int            `yaml:"total"`
	DuplicatesRemoved int            `yaml:"duplicates_removed"`
	Filtered          int            `yaml:"filtered"`
	Queried           []types.Source `yaml:"queried,omitempty"`
	Timestamp         time.Time      `yaml:"timestamp"`
}

// WriteQueryFile saves the query, filters, and results to a YAML file.
func WriteQueryFile(path, query string, filters types.SearchFilters, out SearchOutput) error {
	qf := QueryFile{
		Query:   query,
		Filters: filters,
		Results: out.Papers,
		Summary: QuerySummary{
			Total:             len(out.Papers),
			DuplicatesRemoved: out.DupsRemoved,
			Filtered:          out.Filtered,
			Queried:           out.Queried,
			Timestamp:         time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if err := qf.Filters.Validate(); err != nil {
		return nil, fmt.Errorf("query file %s: %w", path, err)
	}
	return &qf, nil
}

// Output rebuilds a SearchOutput from the stored results.
func (qf *QueryFile) Output() SearchOutput {
	return SearchOutput{
		Papers:      qf.Results,
		Queried:     qf.Summary.Queried,
		Filtered:    qf.Summary.Filtered,
		DupsRemoved: qf.Summary.DuplicatesRemoved,
	}
}
