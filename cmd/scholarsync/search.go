// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search every provider for papers matching a query",
	Long: `Search sends a query to arXiv, Semantic Scholar, Tavily, and WolframAlpha
concurrently. Results are filtered by publication year, deduplicated by
normalized title, sorted, and capped at --max-results.

Providers without a configured key are skipped. Use --save to keep the
results in a YAML query file and --load to display a saved file again.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "search query (alternatively pass it as arguments)")
	searchCmd.Flags().String("sources", "", "comma-separated sources: arxiv, semantic-scholar, tavily, wolfram (default all)")
	searchCmd.Flags().Int("from-year", 0, "earliest publication year, inclusive")
	searchCmd.Flags().Int("to-year", 0, "latest publication year, inclusive")
	searchCmd.Flags().String("sort", "relevance", "sort order: relevance, date, citations")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (default from config, 20)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("csl", false, "output results as CSL-YAML")
	searchCmd.Flags().String("save", "", "write query, filters, and results to a YAML file")
	searchCmd.Flags().String("load", "", "display results from a saved YAML query file instead of searching")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	asCSL, _ := cmd.Flags().GetBool("csl")
	if asJSON && asCSL {
		return fmt.Errorf("--json and --csl are mutually exclusive")
	}

	if loadPath, _ := cmd.Flags().GetString("load"); loadPath != "" {
		qf, err := search.ReadQueryFile(loadPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Query: %s (saved %s)\n", qf.Query, qf.Summary.Timestamp.Format("2006-01-02 15:04"))
		return writeOutput(qf.Output(), asJSON, asCSL)
	}

	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("provide a query with --query or as arguments")
	}

	cfg := appConfig()

	sources, _ := cmd.Flags().GetString("sources")
	fromYear, _ := cmd.Flags().GetInt("from-year")
	toYear, _ := cmd.Flags().GetInt("to-year")
	sortBy, _ := cmd.Flags().GetString("sort")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = cfg.Search.MaxResults
	}

	filters, err := buildFilters(sources, fromYear, toYear, sortBy, maxResults)
	if err != nil {
		return err
	}

	agg := newAggregator(cfg.Search, log)
	out, err := agg.Search(context.Background(), query, filters)
	if err != nil {
		return err
	}

	if savePath, _ := cmd.Flags().GetString("save"); savePath != "" {
		if err := search.WriteQueryFile(savePath, query, filters, out); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(out.Papers), savePath)
	}

	return writeOutput(out, asJSON, asCSL)
}

func writeOutput(out search.SearchOutput, asJSON, asCSL bool) error {
	switch {
	case asJSON:
		return search.FormatJSON(out, os.Stdout)
	case asCSL:
		return search.FormatCSL(out, os.Stdout)
	default:
		search.FormatTable(out, os.Stdout)
		return nil
	}
}
