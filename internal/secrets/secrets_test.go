// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "tavily-api-key", "  tvly-abc123  \n")
				writeFile(t, dir, "semantic-scholar-api-key", "sk_xyz789")
				writeFile(t, dir, "wolfram-app-id", "WA-APPID\n")
				return dir
			},
			want: map[string]string{
				"tavily-api-key":           "tvly-abc123",
				"semantic-scholar-api-key": "sk_xyz789",
				"wolfram-app-id":           "WA-APPID",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "wolfram-app-id", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"wolfram-app-id": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "tavily-api-key", "tvly-real")
				return dir
			},
			want: map[string]string{
				"tavily-api-key": "tvly-real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "semantic-scholar-api-key", "sk_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"semantic-scholar-api-key": "sk_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions do not restrict root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestLoadLogsSkippedSecret(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")
	// A dangling symlink fails to read regardless of privileges.
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "bad-key")))

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"good-key": "value123"}, got)

	entries := logs.FilterMessage("could not read secret").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bad-key", entries[0].ContextMap()["name"])
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCredentials(t *testing.T) {
	loaded := map[string]string{
		TavilyAPIKey: "tvly-file",
		WolframAppID: "wa-file",
	}
	env := map[string]string{
		"WOLFRAM_APP_ID":           "wa-env",
		"SEMANTIC_SCHOLAR_API_KEY": "  ",
	}

	creds := Credentials(loaded, func(k string) string { return env[k] })
	assert.Equal(t, "tvly-file", creds.TavilyAPIKey)
	assert.Equal(t, "wa-env", creds.WolframAppID, "environment should override the file")
	assert.Empty(t, creds.SemanticScholarAPIKey, "blank env and no file leaves the key empty")
}

func TestCredentialsNilGetenv(t *testing.T) {
	creds := Credentials(map[string]string{TavilyAPIKey: "k"}, nil)
	assert.Equal(t, "k", creds.TavilyAPIKey)
	assert.Empty(t, creds.WolframAppID)
}
