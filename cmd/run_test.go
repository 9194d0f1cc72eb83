package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/export"
	"github.com/spigell/resume-selector/internal/gateway/gemini"
	"github.com/spigell/resume-selector/internal/gateway/ollama"
	"github.com/spigell/resume-selector/internal/pipeline"
)

type stubGateway struct {
	pingErr error
	models  []string
}

func (s *stubGateway) Provider() string { return "stub" }

func (s *stubGateway) Ping(context.Context) error { return s.pingErr }

func (s *stubGateway) ListModels(context.Context) ([]string, error) { return s.models, nil }

func (s *stubGateway) Generate(context.Context, string, string, string) (string, error) {
	return "", nil
}

func TestPrintRanking(t *testing.T) {
	result := &pipeline.Result{
		Model: "llama3.1:8b",
		Total: 3,
		Reports: []candidate.Report{
			{Name: "John", Score: 90, Recommendation: candidate.Hire, Filename: "john.txt"},
			{Name: "Jane", Score: 75.5, Recommendation: candidate.Maybe, Filename: "jane.pdf"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printRanking(&buf, result))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "RANK  SCORE  RECOMMENDATION  NAME  FILE", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "1     90.0   hire            John  john.txt", lines[1])
	assert.Equal(t, "2     75.5   maybe           Jane  jane.pdf", lines[2])
	assert.Contains(t, buf.String(), "2 of 3 resumes assessed with llama3.1:8b")
}

func TestChooseModelKeepsAvailableModel(t *testing.T) {
	gw := &stubGateway{models: []string{"llama3.1:8b"}}

	model, err := chooseModel(context.Background(), gw, "llama3.1:8b", func(string, []string) (string, error) {
		t.Fatal("selector must not be called")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "llama3.1:8b", model)
}

func TestChooseModelAsksForMissingModel(t *testing.T) {
	gw := &stubGateway{models: []string{"mistral:latest", "phi3:mini"}}

	var offered []string
	model, err := chooseModel(context.Background(), gw, "llama3.1:8b", func(_ string, items []string) (string, error) {
		offered = items
		return items[1], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "phi3:mini", model)
	assert.Equal(t, gw.models, offered)
}

func TestChooseModelErrors(t *testing.T) {
	never := func(string, []string) (string, error) { return "", errors.New("unexpected") }

	_, err := chooseModel(context.Background(), &stubGateway{pingErr: errors.New("refused")}, "m", never)
	assert.Error(t, err)

	_, err = chooseModel(context.Background(), &stubGateway{}, "m", never)
	assert.EqualError(t, err, "no models are available")
}

func TestNewGatewayOllama(t *testing.T) {
	gw, err := newGateway(context.Background(), &GatewayConfig{
		Provider: ollama.Provider,
		Ollama:   &OllamaConfig{BaseURL: ollama.DefaultBaseURL},
		Gemini:   &GeminiConfig{},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ollama.Provider, gw.Provider())
}

func TestNewGatewayGeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := newGateway(context.Background(), &GatewayConfig{
		Provider: "gemini",
		Ollama:   &OllamaConfig{},
		Gemini:   &GeminiConfig{},
	}, zap.NewNop())
	assert.ErrorContains(t, err, "gemini api key is not configured")
}

func TestNewGatewayUnsupported(t *testing.T) {
	_, err := newGateway(context.Background(), &GatewayConfig{Provider: "openai"}, zap.NewNop())
	assert.Error(t, err)
}

func TestGeminiConfigUsesGeminiSettings(t *testing.T) {
	cfg := geminiConfig(&GatewayConfig{
		Timeout:      time.Minute,
		MaxLogLength: 100,
		Ollama:       &OllamaConfig{Temperature: 0.9, NumPredict: 4096},
		Gemini:       &GeminiConfig{Temperature: 0.2, MaxOutputTokens: 1024},
	}, "key")

	assert.Equal(t, gemini.Config{
		APIKey:          "key",
		Timeout:         time.Minute,
		Temperature:     0.2,
		MaxOutputTokens: 1024,
		MaxLogLength:    100,
	}, cfg)
}

func TestPublishResultsClosesSinks(t *testing.T) {
	mr := miniredis.RunT(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))
	doc := export.FromResult(&pipeline.Result{Model: "llama3.1:8b", Provider: "ollama", Total: 0}, time.Now())

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "published", path: filepath.Join(t.TempDir(), "results.json")},
		{name: "file sink fails", path: filepath.Join(blocker, "results.json"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sinks, err := publishResults(context.Background(), &ExportConfig{
				Path:     tt.path,
				Validate: true,
				Redis:    &RedisConfig{Addr: mr.Addr(), Key: "results"},
			}, doc)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			require.Len(t, sinks, 2)
			redisSink, ok := sinks[1].(export.RedisSink)
			require.True(t, ok)
			assert.ErrorIs(t, redisSink.Client.Ping(context.Background()).Err(), redis.ErrClosed)
		})
	}
}
