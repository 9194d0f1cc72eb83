// Package gemini is a gateway backend for the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/logger"
	"github.com/spigell/resume-selector/internal/utils"
)

const (
	Provider = "gemini"

	DefaultModel           = "gemini-2.5-pro"
	DefaultTimeout         = 30 * time.Second
	DefaultTemperature     = 0.1
	DefaultMaxOutputTokens = 2000

	defaultMaxLogLength = 200
	maxQuotaDelay       = 30 * time.Second
	pingTimeout         = 5 * time.Second
	modelPrefix         = "models/"
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type modelLister interface {
	List(ctx context.Context, config *genai.ListModelsConfig) (genai.Page[genai.Model], error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Config holds the Gemini client settings.
type Config struct {
	APIKey       string
	Timeout      time.Duration
	Temperature     float64
	MaxOutputTokens int
	MaxLogLength    int
}

// Generator is a gateway.Gateway backed by the Gemini API.
type Generator struct {
	chats  chatCreator
	models modelLister

	timeout         time.Duration
	temperature     float32
	maxOutputTokens int32
	maxLogLen       int
	logger          *zap.Logger
}

var _ gateway.Gateway = (*Generator)(nil)

// New creates a Generator configured for the Gemini API backend.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := &Generator{
		chats:           genaiChats{chats: client.Chats},
		models:          client.Models,
		timeout:         cfg.Timeout,
		temperature:     float32(cfg.Temperature),
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		maxLogLen:       cfg.MaxLogLength,
		logger:          logger.WithFields(log, zap.String(logger.FieldProvider, Provider)),
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.maxLogLen <= 0 {
		g.maxLogLen = defaultMaxLogLength
	}

	return g, nil
}

func (g *Generator) Provider() string {
	return Provider
}

// Ping lists a single model to check the key and the endpoint.
func (g *Generator) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := g.models.List(ctx, &genai.ListModelsConfig{PageSize: 1}); err != nil {
		return fmt.Errorf("gemini list models: %w", classify(err))
	}
	return nil
}

// ListModels returns the model identifiers without the "models/" prefix.
func (g *Generator) ListModels(ctx context.Context) ([]string, error) {
	var names []string

	cfg := &genai.ListModelsConfig{}
	for {
		page, err := g.models.List(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("gemini list models: %w", classify(err))
		}

		for _, m := range page.Items {
			if m == nil {
				continue
			}
			if name := strings.TrimPrefix(strings.TrimSpace(m.Name), modelPrefix); name != "" {
				names = append(names, name)
			}
		}

		if page.NextPageToken == "" {
			return names, nil
		}
		cfg.PageToken = page.NextPageToken
	}
}

// Generate sends prompt in a fresh chat with system as the system instruction.
func (g *Generator) Generate(ctx context.Context, model, prompt, system string) (string, error) {
	model = strings.TrimPrefix(strings.TrimSpace(model), modelPrefix)
	if model == "" {
		model = DefaultModel
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", gateway.ErrPermanent)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if g.temperature > 0 {
		temperature := g.temperature
		config.Temperature = &temperature
	}
	if g.maxOutputTokens > 0 {
		config.MaxOutputTokens = g.maxOutputTokens
	}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	log := g.logger.With(zap.String(logger.FieldModel, model))
	log.Debug("sending gemini request", zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)))

	chat, err := g.chats.Create(ctx, model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create gemini chat: %w", classify(err))
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", classify(err))
	}

	output := responseText(resp)
	log.Debug("received gemini response", zap.String("response_preview", utils.TruncateForLog(output, g.maxLogLen)))

	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

var retryDelayPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*(?:s\b|sec|second)`)

// classify marks errors a retry cannot fix as gateway.ErrPermanent.
func classify(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return errors.Join(gateway.ErrPermanent, err)
	case http.StatusTooManyRequests:
		if delay, ok := quotaDelay(apiErr.Message); ok && delay > maxQuotaDelay {
			return errors.Join(gateway.ErrPermanent, err)
		}
	}
	return err
}

func quotaDelay(message string) (time.Duration, bool) {
	match := retryDelayPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
