// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/httputil"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/search"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

var paperCmd = &cobra.Command{
	Use:   "paper <id>",
	Short: "Show Semantic Scholar details for one paper",
	Long: `Paper fetches one paper from Semantic Scholar with its extended fields
(journal, fields of study). The id may be a Semantic Scholar paper id or a
prefixed external id such as DOI:10.1145/3065386 or arXiv:1706.03762.`,
	Args: cobra.ExactArgs(1),
	RunE: runPaper,
}

func init() {
	paperCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(paperCmd)
}

func runPaper(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	b := &search.SemanticScholarBackend{
		Client:     httputil.NewClient(cfg.Search.Timeout),
		UserAgent:  cfg.Search.UserAgent,
		APIKey:     cfg.Search.Credentials.SemanticScholarAPIKey,
		MaxRetries: cfg.Search.MaxRetries,
		Log:        log,
	}

	p := b.Details(context.Background(), args[0])
	if p == nil {
		return fmt.Errorf("paper %s not found", args[0])
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	printPaper(p)
	return nil
}

func printPaper(p *types.Paper) {
	fmt.Printf("%s\n", p.Title)
	if len(p.Authors) > 0 {
		fmt.Printf("  Authors:    %s\n", strings.Join(p.Authors, ", "))
	}
	if p.Year != nil {
		fmt.Printf("  Year:       %d\n", *p.Year)
	}
	if p.Journal != "" {
		fmt.Printf("  Journal:    %s\n", p.Journal)
	}
	if p.Category != "" {
		fmt.Printf("  Fields:     %s\n", p.Category)
	}
	if p.Citations != nil {
		fmt.Printf("  Citations:  %d\n", *p.Citations)
	}
	if p.References != nil {
		fmt.Printf("  References: %d\n", *p.References)
	}
	if p.DOI != "" {
		fmt.Printf("  DOI:        %s\n", p.DOI)
	}
	fmt.Printf("  URL:        %s\n", p.URL)
	if p.Abstract != "" {
		fmt.Printf("\n%s\n", p.Abstract)
	}
}
