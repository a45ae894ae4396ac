package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "claude", cfg.ActiveModel)
	assert.Equal(t, 16, cfg.Parser.ChunkSize)
	assert.Equal(t, 1048576, cfg.Parser.MaxBuffer)

	model, ok := cfg.GetActiveModel()
	require.True(t, ok)
	assert.Equal(t, "anthropic", model.Provider)
}

func TestLoadMergesLayers(t *testing.T) {
	global := t.TempDir()
	local := t.TempDir()

	writeConfig(t, global, "models.cmdstream.yaml", `
models:
  fast:
    provider: openai
    name: gpt-4o-mini
parser:
  chunkSize: 4
`)
	localFile := writeConfig(t, local, "project.cmdstream.yaml", `
activeModel: fast
parser:
  showPartial: true
`)
	writeConfig(t, local, "ignored.yaml", "activeModel: nope\n")

	cfg, err := load([]string{global, local}, nil)
	require.NoError(t, err)

	assert.Equal(t, "fast", cfg.ActiveModel)
	assert.Contains(t, cfg.Models, "claude")
	assert.Contains(t, cfg.Models, "fast")
	assert.Equal(t, 4, cfg.Parser.ChunkSize)
	assert.True(t, cfg.Parser.ShowPartial)
	assert.Equal(t, 1048576, cfg.Parser.MaxBuffer)
	assert.Equal(t, localFile, cfg.sourceOf("activeModel"))
	assert.Equal(t, "default", cfg.sourceOf("log.level"))
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CMDSTREAM_CHUNK_SIZE", "32")
	t.Setenv("CMDSTREAM_LOG_LEVEL", "DEBUG")

	cfg, err := load(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Parser.ChunkSize)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "CMDSTREAM_CHUNK_SIZE environment variable", cfg.sourceOf("parser.chunkSize"))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown active model",
			content: "activeModel: missing\n",
			wantErr: "activeModel",
		},
		{
			name:    "unsupported provider",
			content: "models:\n  odd:\n    provider: carrier-pigeon\n    name: coo\n",
			wantErr: "config validation error",
		},
		{
			name:    "chunk size below one",
			content: "parser:\n  chunkSize: 0\n",
			wantErr: "config validation error",
		},
		{
			name:    "bad log level",
			content: "log:\n  level: LOUD\n",
			wantErr: "config validation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "bad.cmdstream.yaml", tt.content)

			_, err := load([]string{dir}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadBrokenFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "broken.cmdstream.json", "{not json")

	_, err := load([]string{dir}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.cmdstream.json")
}

func TestRuntimeOverrides(t *testing.T) {
	model := "gpt"
	maxTokens := 100
	chunkSize := 3
	level := "WARN"

	cfg, err := load(nil, &RuntimeOverrides{
		ActiveModel: &model,
		MaxTokens:   &maxTokens,
		ChunkSize:   &chunkSize,
		LogLevel:    &level,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt", cfg.ActiveModel)
	assert.Equal(t, 100, cfg.Models["gpt"].MaxTokens)
	assert.Equal(t, 4096, cfg.Models["claude"].MaxTokens)
	assert.Equal(t, 3, cfg.Parser.ChunkSize)
	assert.Equal(t, "WARN", cfg.Log.Level)
	assert.Equal(t, flagSource, cfg.sourceOf("parser.chunksize"))

	missing := "nope"
	_, err = load(nil, &RuntimeOverrides{ActiveModel: &missing})
	assert.ErrorContains(t, err, `model "nope" not found`)
}

func TestKnownKeys(t *testing.T) {
	known := GetKnownKeys()

	for _, key := range []string{"log.level", "activeModel", "parser.chunkSize", "models.fast.provider", "models.fast.apiKey"} {
		assert.True(t, IsKnownKey(known, key), key)
	}
	for _, key := range []string{"parser.bogus", "theme", "models.fast.colour"} {
		assert.False(t, IsKnownKey(known, key), key)
	}
}

func TestPrintConfig(t *testing.T) {
	cfg, err := load(nil, nil)
	require.NoError(t, err)

	claude := cfg.Models["claude"]
	claude.APIKey = "sk-very-secret"
	cfg.Models["claude"] = claude

	var buf bytes.Buffer
	require.NoError(t, cfg.PrintConfig(&buf, false, ""))
	out := buf.String()
	assert.Contains(t, out, "chunkSize: 16")
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "sk-very-secret")
	assert.NotContains(t, out, "(default)")

	buf.Reset()
	require.NoError(t, cfg.PrintConfig(&buf, true, ""))
	assert.Contains(t, buf.String(), "# (default)")

	buf.Reset()
	require.NoError(t, cfg.PrintConfig(&buf, false, "models.gpt"))
	assert.Contains(t, buf.String(), "gpt-4o")
	assert.NotContains(t, buf.String(), "claude")

	assert.ErrorContains(t, cfg.PrintConfig(&buf, false, "models.missing"), `no configuration under "models.missing"`)
}

func TestGenerateJSONSchema(t *testing.T) {
	schema, err := GenerateJSONSchema()
	require.NoError(t, err)

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chunkSize")
	assert.Contains(t, string(data), "anthropic")
}

func TestWriteJSONSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSchema(&buf))
	assert.True(t, json.Valid(buf.Bytes()))
	assert.Contains(t, buf.String(), "cmdstream Configuration Schema")
}
