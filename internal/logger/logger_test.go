// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

func TestNewDefaults(t *testing.T) {
	log, err := New(types.LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		cfg    types.LogConfig
		errMsg string
	}{
		{"level", types.LogConfig{Level: "loud"}, "parsing log level"},
		{"format", types.LogConfig{Format: "xml"}, "unknown log format"},
		{"output", types.LogConfig{Output: "syslog"}, "unknown log output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	log, err := New(types.LogConfig{
		Level:  "debug",
		Format: "json",
		Output: "file",
		File:   types.LogFileConfig{Filename: path},
	})
	require.NoError(t, err)

	log.Info("provider search failed")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "{"), "json encoder should write objects, got %q", line)
	assert.Contains(t, line, `"msg":"provider search failed"`)
}
