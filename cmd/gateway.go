package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/gateway/gemini"
	"github.com/spigell/resume-selector/internal/gateway/ollama"
	"github.com/spigell/resume-selector/internal/secrets"
)

func newGateway(ctx context.Context, cfg *GatewayConfig, logger *zap.Logger) (gateway.Gateway, error) {
	switch cfg.Provider {
	case ollama.Provider:
		return ollama.New(ollama.Config{
			BaseURL:      cfg.Ollama.BaseURL,
			Timeout:      cfg.Timeout,
			Temperature:  cfg.Ollama.Temperature,
			NumPredict:   cfg.Ollama.NumPredict,
			MaxLogLength: cfg.MaxLogLength,
		}, logger), nil
	case gemini.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			Env:   "GEMINI_API_KEY",
			File:  cfg.Gemini.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set gateway.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		return gemini.New(ctx, geminiConfig(cfg, apiKey), logger)
	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", cfg.Provider)
	}
}

func geminiConfig(cfg *GatewayConfig, apiKey string) gemini.Config {
	return gemini.Config{
		APIKey:          apiKey,
		Timeout:         cfg.Timeout,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		MaxLogLength:    cfg.MaxLogLength,
	}
}

// selector picks one of the offered items.
type selector func(label string, items []string) (string, error)

func promptSelect(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}

	_, selected, err := prompt.Run()
	return selected, err
}

// chooseModel returns current when the gateway serves it and otherwise asks
// the user to pick one of the available models.
func chooseModel(ctx context.Context, gw gateway.Gateway, current string, pick selector) (string, error) {
	if err := gw.Ping(ctx); err != nil {
		return "", fmt.Errorf("%s is unreachable: %w", gw.Provider(), err)
	}

	models, err := gw.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}

	if gateway.HasModel(models, current) {
		return current, nil
	}

	if len(models) == 0 {
		return "", errors.New("no models are available")
	}

	return pick(fmt.Sprintf("Model %q is not available. Choose a model", current), models)
}
