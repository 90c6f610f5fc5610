// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/httputil"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/search"
)

var computeCmd = &cobra.Command{
	Use:   "compute <query>",
	Short: "Ask WolframAlpha a computational question",
	Long: `Compute sends the query to WolframAlpha and prints the primary result.
Use --pods to dump every result pod as YAML. Requires a WolframAlpha app id
in .secrets/wolfram-app-id or WOLFRAM_APP_ID.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompute,
}

func init() {
	computeCmd.Flags().Bool("pods", false, "print every pod as YAML")
	rootCmd.AddCommand(computeCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	b := &search.WolframBackend{
		Client:    httputil.NewClient(cfg.Search.Timeout),
		UserAgent: cfg.Search.UserAgent,
		AppID:     cfg.Search.Credentials.WolframAppID,
		Log:       log,
	}
	if !b.Available() {
		return fmt.Errorf("no WolframAlpha app id configured")
	}

	query := strings.Join(args, " ")
	res := b.Compute(context.Background(), query)
	if res == nil {
		return fmt.Errorf("WolframAlpha could not answer %q", query)
	}

	if pods, _ := cmd.Flags().GetBool("pods"); pods {
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(res)
	}
	fmt.Println(res.Result)
	return nil
}
