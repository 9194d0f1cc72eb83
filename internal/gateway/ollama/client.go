// Package ollama talks to a local Ollama server over its REST API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/logger"
	"github.com/spigell/resume-selector/internal/utils"
)

const (
	Provider = "ollama"

	DefaultModel       = "llama3.1:8b"
	DefaultBaseURL     = "http://localhost:11434"
	DefaultTimeout     = 30 * time.Second
	DefaultTemperature = 0.1
	DefaultNumPredict  = 2000

	pingTimeout   = 5 * time.Second
	contentType   = "application/json"
	maxErrorBody  = 512
	defaultLogLen = 200
)

// Config holds the connection settings of the client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	Temperature  float64
	NumPredict   int
	MaxLogLength int
}

// Client is a gateway.Gateway backed by Ollama.
type Client struct {
	baseURL      string
	http         *http.Client
	temperature  float64
	numPredict   int
	maxLogLength int
	logger       *zap.Logger
}

var _ gateway.Gateway = (*Client)(nil)

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// New returns a client for the server described by cfg. An empty URL and
// non-positive timeout, token limit or log length take the defaults.
func New(cfg Config, log *zap.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	temperature := cfg.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	numPredict := cfg.NumPredict
	if numPredict <= 0 {
		numPredict = DefaultNumPredict
	}
	maxLogLength := cfg.MaxLogLength
	if maxLogLength <= 0 {
		maxLogLength = defaultLogLen
	}

	return &Client{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: timeout},
		temperature:  temperature,
		numPredict:   numPredict,
		maxLogLength: maxLogLength,
		logger:       logger.WithFields(log, zap.String(logger.FieldProvider, Provider)),
	}
}

func (c *Client) Provider() string {
	return Provider
}

// Ping checks that the server answers on /api/version.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodGet, "/api/version", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama version check: bad status: %s", resp.Status)
	}
	return nil
}

// ListModels returns the names of the locally pulled models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list models", resp)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode ollama tags: %w", err)
	}

	models := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if name := strings.TrimSpace(m.Name); name != "" {
			models = append(models, name)
		}
	}
	return models, nil
}

// Generate runs a non-streaming completion and returns the trimmed response text.
func (c *Client) Generate(ctx context.Context, model, prompt, system string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", fmt.Errorf("%w: model is required", gateway.ErrPermanent)
	}

	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		System: system,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			NumPredict:  c.numPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode ollama request: %w", err)
	}

	log := c.logger.With(zap.String(logger.FieldModel, model))
	log.Debug("sending generate request", zap.String("prompt_preview", utils.TruncateForLog(prompt, c.maxLogLength)))

	resp, err := c.do(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := statusError("generate", resp)
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
			err = errors.Join(gateway.ErrPermanent, err)
		}
		return "", err
	}

	var res generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	text := strings.TrimSpace(res.Response)
	log.Debug("received generate response", zap.String("response_preview", utils.TruncateForLog(text, c.maxLogLength)))

	return text, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama %s %s: %w", method, path, err)
	}

	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("ollama %s: bad status %s: %s", op, resp.Status, strings.TrimSpace(string(data)))
}
