// Package gateway defines the model backend capability the pipeline drives.
package gateway

import (
	"context"
	"errors"
	"strings"
)

// ErrPermanent marks gateway failures that a retry cannot fix, such as an
// unknown model or an exhausted quota.
var ErrPermanent = errors.New("permanent gateway failure")

// Generator produces text for a prompt and an optional system instruction.
// A failed call returns ("", err); an empty successful response returns ("", nil).
type Generator interface {
	Generate(ctx context.Context, model, prompt, system string) (string, error)
}

// Gateway is a model backend.
type Gateway interface {
	Generator

	// Ping returns nil when the backend is reachable.
	Ping(ctx context.Context) error
	// ListModels returns the identifiers of the models the backend can serve.
	ListModels(ctx context.Context) ([]string, error)
	// Provider names the backend for logs and exports.
	Provider() string
}

// HasModel reports whether model is among available. A model name without a
// tag matches the same name tagged ":latest".
func HasModel(available []string, model string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return false
	}

	for _, name := range available {
		if name == model {
			return true
		}
		if !strings.Contains(model, ":") && name == model+":latest" {
			return true
		}
	}
	return false
}
