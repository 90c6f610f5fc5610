// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/library"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Long: `Serve starts the HTTP API: POST /search runs an aggregated search, and
the /saved-papers and /history routes manage each user's library. The user
is identified by the X-User-ID header. SIGINT or SIGTERM triggers a
graceful shutdown.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (default 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "listen port (default 8080)")
	serveCmd.Flags().String("db", "", "library database path (default data/scholarsync.db)")

	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("library.path", serveCmd.Flags().Lookup("db"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig()

	lib, err := library.NewStore(cfg.Library)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer lib.Close()

	agg := newAggregator(cfg.Search, log)
	srv := server.NewHTTPServer(cfg.Server, log, agg, lib)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	if err := srv.Stop(context.Background()); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return <-errCh
}
