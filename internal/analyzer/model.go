// Package analyzer turns extracted snippets into validated filename proposals using a
// hosted language model.
package analyzer

import (
	"context"
	"fmt"

	"github.com/BerylCAtieno/file-renamer-api/internal/config"
	"github.com/BerylCAtieno/file-renamer-api/internal/utils"
)

// Model is a hosted language model that supports text and vision generation.
type Model interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Describe(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

// NewModel builds the model selected by LLM_PROVIDER. The returned close function
// releases provider resources.
func NewModel(ctx context.Context, cfg *config.Config, logger *utils.Logger) (Model, func() error, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenRouter:
		m := NewOpenRouterModel(cfg.OpenRouterURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, logger)
		return m, func() error { return nil }, nil
	case config.ProviderVertex:
		m, err := NewVertexModel(ctx, cfg.VertexProjectID, cfg.VertexRegion, cfg.VertexModel, cfg.GCPCredentialsFile, logger)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}
