// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/httputil"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/internal/search"
	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

const (
	defaultUserAgent       = "ScholarSync/1.0 (academic research app)"
	defaultProviderTimeout = 15 * time.Second
	defaultMaxRetries      = 2
)

// setDefaults registers a default for every config key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.provider_timeout", defaultProviderTimeout)
	v.SetDefault("search.user_agent", defaultUserAgent)
	v.SetDefault("search.max_results", types.DefaultMaxResults)
	v.SetDefault("search.max_retries", defaultMaxRetries)

	v.SetDefault("library.path", "data/scholarsync.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file.filename", "logs/scholarsync.log")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", false)
}

// loadConfig reads every component configuration from v.
func loadConfig(v *viper.Viper, creds types.Credentials) types.AppConfig {
	return types.AppConfig{
		Server: types.ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("search.timeout"),
				UserAgent: v.GetString("search.user_agent"),
			},
			ProviderTimeout: v.GetDuration("search.provider_timeout"),
			MaxResults:      v.GetInt("search.max_results"),
			MaxRetries:      v.GetInt("search.max_retries"),
			Credentials:     creds,
		},
		Library: types.LibraryConfig{
			Path: v.GetString("library.path"),
		},
		Log: logConfig(v),
	}
}

func logConfig(v *viper.Viper) types.LogConfig {
	return types.LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
		Output: v.GetString("log.output"),
		File: types.LogFileConfig{
			Filename:   v.GetString("log.file.filename"),
			MaxSize:    v.GetInt("log.file.max_size"),
			MaxAge:     v.GetInt("log.file.max_age"),
			MaxBackups: v.GetInt("log.file.max_backups"),
			Compress:   v.GetBool("log.file.compress"),
		},
	}
}

// newAggregator wires the four provider backends around one HTTP client.
func newAggregator(cfg types.SearchConfig, log *zap.Logger) *search.Aggregator {
	client := httputil.NewClient(cfg.Timeout)
	backends := search.Backends(client, cfg, log)
	for _, b := range backends {
		if !b.Available() {
			log.Info("provider disabled: no credential", zap.String("provider", string(b.Source())))
		}
	}
	return search.NewAggregator(log, cfg.ProviderTimeout, backends...)
}

// parseSources turns a comma-separated list into sources. An empty string
// selects every source.
func parseSources(list string) ([]types.Source, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return append([]types.Source(nil), types.AllSources...), nil
	}
	var sources []types.Source
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		src, err := types.ParseSource(part)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// buildFilters assembles and validates SearchFilters from CLI values. Zero
// years mean unbounded.
func buildFilters(sources string, fromYear, toYear int, sortBy string, maxResults int) (types.SearchFilters, error) {
	srcs, err := parseSources(sources)
	if err != nil {
		return types.SearchFilters{}, fmt.Errorf("%w: %v", types.ErrInvalidFilters, err)
	}
	f := types.SearchFilters{
		Sources:    srcs,
		SortBy:     types.SortBy(strings.ToLower(strings.TrimSpace(sortBy))),
		MaxResults: maxResults,
	}
	if fromYear > 0 {
		f.YearFrom = types.IntPtr(fromYear)
	}
	if toYear > 0 {
		f.YearTo = types.IntPtr(toYear)
	}
	if err := f.Validate(); err != nil {
		return types.SearchFilters{}, err
	}
	return f, nil
}
