package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/gateway"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/", Temperature: DefaultTemperature}, zap.NewNop())
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, contentType, r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "  {\"name\":\"Jane\"}\n", "done": true})
	})

	text, err := client.Generate(context.Background(), "llama3.1:8b", "Resume to parse:\n\ntext", "system prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Jane"}`, text)

	assert.Equal(t, "llama3.1:8b", got.Model)
	assert.Equal(t, "system prompt", got.System)
	assert.False(t, got.Stream)
	assert.Equal(t, DefaultTemperature, got.Options.Temperature)
	assert.Equal(t, DefaultNumPredict, got.Options.NumPredict)
}

func TestGenerateEmptyResponseIsNotAnError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":""}`))
	})

	text, err := client.Generate(context.Background(), "llama3.1:8b", "prompt", "")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerateOmitsEmptySystem(t *testing.T) {
	var raw map[string]any
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	})

	_, err := client.Generate(context.Background(), "llama3.1:8b", "prompt", "")
	require.NoError(t, err)
	assert.NotContains(t, raw, "system")
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		permanent bool
	}{
		{name: "missing model", status: http.StatusNotFound, permanent: true},
		{name: "server error", status: http.StatusInternalServerError, permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"boom"}`, tt.status)
			})

			text, err := client.Generate(context.Background(), "llama3.1:8b", "prompt", "")
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Equal(t, tt.permanent, errors.Is(err, gateway.ErrPermanent))
		})
	}
}

func TestGenerateRequiresModel(t *testing.T) {
	client := New(Config{}, nil)

	_, err := client.Generate(context.Background(), " ", "prompt", "")
	assert.ErrorIs(t, err, gateway.ErrPermanent)
}

func TestPing(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"version":"0.5.7"}`))
	})

	assert.NoError(t, client.Ping(context.Background()))
}

func TestPingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url}, zap.NewNop())
	assert.Error(t, client.Ping(context.Background()))
}

func TestListModels(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:8b"},{"name":""},{"name":"mistral:latest"}]}`))
	})

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.1:8b", "mistral:latest"}, models)
}
