package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultModel, cfg.Oracle.Model)
	assert.Equal(t, DefaultTimeout, cfg.Oracle.Timeout)
	assert.Equal(t, DefaultConfidenceThreshold, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, "reject", cfg.Directory.AmbiguityPolicy)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINUTES_CONFIG_DIR", dir)

	content := `oracle:
  model: openai/gpt-4o
  timeout: 30s
pipeline:
  confidence_threshold: 0.8
directory:
  path: people.yaml
output_dir: results
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0600))

	// Env overrides file.
	t.Setenv("MINUTES_MODEL", "openai/gpt-4o-mini")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	t.Setenv("MINUTES_CONFIDENCE_THRESHOLD", "0.9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o-mini", cfg.Oracle.Model)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 0.9, cfg.Pipeline.ConfidenceThreshold)
	assert.Equal(t, "people.yaml", cfg.Directory.Path)
	assert.Equal(t, "results", cfg.OutputDir)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MINUTES_CONFIG_DIR", t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Oracle.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Oracle.Model = "" }},
		{"zero timeout", func(c *Config) { c.Oracle.Timeout = 0 }},
		{"threshold above one", func(c *Config) { c.Pipeline.ConfidenceThreshold = 1.5 }},
		{"zero overload limit", func(c *Config) { c.Pipeline.OverloadLimit = 0 }},
		{"bad ambiguity policy", func(c *Config) { c.Directory.AmbiguityPolicy = "coin-flip" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("MINUTES_CONFIG_DIR", t.TempDir())
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg := DefaultConfig()
	cfg.Oracle.Timeout = 45 * time.Second
	cfg.OutputDir = "elsewhere"
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, loaded.Oracle.Timeout)
	assert.Equal(t, "elsewhere", loaded.OutputDir)
	// The API key never round-trips through the file.
	assert.Empty(t, loaded.Oracle.APIKey)
}
