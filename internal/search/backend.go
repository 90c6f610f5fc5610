// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// defaultLimit applies when a caller passes a non-positive limit.
const defaultLimit = 10

// Backends builds the four provider adapters around one shared client.
// Backends without credentials report themselves unavailable.
func Backends(client *http.Client, cfg types.SearchConfig, log *zap.Logger) []Backend {
	log = orNop(log)
	return []Backend{
		&ArxivBackend{Client: client, UserAgent: cfg.UserAgent, Log: log},
		&SemanticScholarBackend{
			Client:     client,
			UserAgent:  cfg.UserAgent,
			APIKey:     cfg.Credentials.SemanticScholarAPIKey,
			MaxRetries: cfg.MaxRetries,
			Log:        log,
		},
		&TavilyBackend{Client: client, UserAgent: cfg.UserAgent, APIKey: cfg.Credentials.TavilyAPIKey, Log: log},
		&WolframBackend{Client: client, UserAgent: cfg.UserAgent, AppID: cfg.Credentials.WolframAppID, Log: log},
	}
}

// logFailure records a provider fault. It is the only place an adapter
// error surfaces.
func logFailure(log *zap.Logger, src types.Source, op, query string, err error) {
	orNop(log).Warn("provider request failed",
		zap.String("provider", string(src)),
		zap.String("op", op),
		zap.String("query", query),
		zap.Error(err),
	)
}

// newID generates an identifier for a result whose provider has none.
func newID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

// collapseSpace trims s and folds internal whitespace runs to one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
