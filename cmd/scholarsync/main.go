// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholarsync CLI and server.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/logger"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/secrets"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	// log is built from the log.* config keys before any command runs.
	log = zap.NewNop()
)

// rootCmd is the base command for the scholarsync CLI.
var rootCmd = &cobra.Command{
	Use:   "scholarsync",
	Short: "Multi-provider scholarly search aggregator",
	Long: `scholarsync searches arXiv, Semantic Scholar, Tavily web search, and
WolframAlpha concurrently and merges the answers into one deduplicated,
ranked list of papers.

Run "scholarsync serve" for the HTTP API or "scholarsync search" for a
one-off query from the terminal. Provider keys are read from .secrets/ or
from TAVILY_API_KEY, WOLFRAM_APP_ID, and SEMANTIC_SCHOLAR_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(logConfig(viper.GetViper()))
		if err != nil {
			return err
		}
		log = l

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholarsync.yaml or ~/.config/scholarsync/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding provider key files")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	setDefaults(viper.GetViper())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholarsync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholarsync"))
		}
	}

	viper.SetEnvPrefix("SCHOLARSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// appConfig resolves the full configuration, merging loaded secrets and
// the credential environment variables.
func appConfig() types.AppConfig {
	creds := secrets.Credentials(loadedSecrets, os.Getenv)
	return loadConfig(viper.GetViper(), creds)
}

func main() {
	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
