// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files and the process environment. Each file in the directory represents
// one secret: the filename is the key name and the file contents (trimmed)
// are the value.
//
// Supported key files: tavily-api-key, wolfram-app-id, semantic-scholar-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// Key file names under the secrets directory.
const (
	TavilyAPIKey          = "tavily-api-key"
	WolframAppID          = "wolfram-app-id"
	SemanticScholarAPIKey = "semantic-scholar-api-key"
)

// envNames maps each key file to the environment variable that overrides it.
var envNames = map[string]string{
	TavilyAPIKey:          "TAVILY_API_KEY",
	WolframAppID:          "WOLFRAM_APP_ID",
	SemanticScholarAPIKey: "SEMANTIC_SCHOLAR_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings on log and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Credentials resolves provider credentials. A non-empty environment
// variable wins over the file-based secret. getenv is usually os.Getenv.
// Missing credentials are left empty, which disables the provider.
func Credentials(loaded map[string]string, getenv func(string) string) types.Credentials {
	lookup := func(key string) string {
		if getenv != nil {
			if v := strings.TrimSpace(getenv(envNames[key])); v != "" {
				return v
			}
		}
		return loaded[key]
	}
	return types.Credentials{
		TavilyAPIKey:          lookup(TavilyAPIKey),
		WolframAppID:          lookup(WolframAppID),
		SemanticScholarAPIKey: lookup(SemanticScholarAPIKey),
	}
}
