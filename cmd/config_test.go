package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()

	file := ""
	if yaml != "" {
		file = filepath.Join(t.TempDir(), "resume-selector.yaml")
		require.NoError(t, os.WriteFile(file, []byte(yaml), 0o600))
	}

	v := viper.New()
	require.NoError(t, configureViper(v, file))
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	config, err := loadConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "ollama", config.Gateway.Provider)
	assert.Equal(t, "llama3.1:8b", config.Gateway.Model)
	assert.Equal(t, 30*time.Second, config.Gateway.Timeout)
	assert.Equal(t, 2, config.Gateway.MaxRetries)
	assert.Equal(t, "http://localhost:11434", config.Gateway.Ollama.BaseURL)
	assert.Equal(t, 0.1, config.Gateway.Ollama.Temperature)
	assert.Equal(t, 2000, config.Gateway.Ollama.NumPredict)
	assert.Equal(t, 0.1, config.Gateway.Gemini.Temperature)
	assert.Equal(t, 2000, config.Gateway.Gemini.MaxOutputTokens)
	assert.Equal(t, 1, config.Processing.MaxConcurrent)
	assert.Equal(t, 10, config.Processing.MaxSkills)
	assert.Equal(t, 6, config.Processing.MaxQuestions)
	assert.Equal(t, "model", config.Processing.RecommendationPolicy)
	assert.Equal(t, "resume_analysis_results.json", config.Export.Path)
	assert.True(t, config.Export.Validate)
}

func TestLoadConfigFromFile(t *testing.T) {
	v := newTestViper(t, `
gateway:
  provider: gemini
  timeout: 1m
  ollama:
    temperature: 0.7
  gemini:
    api-key-file: /run/secrets/gemini
    temperature: 0.3
    max-output-tokens: 512
processing:
  max-concurrent: 4
  recommendation-policy: threshold
export:
  redis:
    addr: localhost:6379
    key: resume-selector:results
`)

	config, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "gemini", config.Gateway.Provider)
	assert.Equal(t, "gemini-2.5-pro", config.Gateway.Model)
	assert.Equal(t, time.Minute, config.Gateway.Timeout)
	assert.Equal(t, "/run/secrets/gemini", config.Gateway.Gemini.APIKeyFile)
	assert.Equal(t, 0.3, config.Gateway.Gemini.Temperature)
	assert.Equal(t, 512, config.Gateway.Gemini.MaxOutputTokens)
	assert.Equal(t, 0.7, config.Gateway.Ollama.Temperature)
	assert.Equal(t, 4, config.Processing.MaxConcurrent)
	assert.Equal(t, "threshold", config.Processing.RecommendationPolicy)
	assert.Equal(t, "localhost:6379", config.Export.Redis.Addr)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RESUME_SELECTOR_GATEWAY_MODEL", "mistral")
	t.Setenv("RESUME_SELECTOR_PROCESSING_MAX_CONCURRENT", "3")
	t.Setenv("GEMINI_API_KEY", "secret")

	config, err := loadConfig(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "mistral", config.Gateway.Model)
	assert.Equal(t, 3, config.Processing.MaxConcurrent)
	assert.Equal(t, "secret", config.Gateway.Gemini.APIKey)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown provider", yaml: "gateway:\n  provider: openai\n"},
		{name: "unknown policy", yaml: "processing:\n  recommendation-policy: vote\n"},
		{name: "zero concurrency", yaml: "processing:\n  max-concurrent: 0\n"},
		{name: "bad base url", yaml: "gateway:\n  ollama:\n    base-url: not a url\n"},
		{name: "gemini temperature out of range", yaml: "gateway:\n  gemini:\n    temperature: 3\n"},
		{name: "redis without key", yaml: "export:\n  redis:\n    addr: localhost:6379\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(newTestViper(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestConfigureViperRequiresExplicitFile(t *testing.T) {
	err := configureViper(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
