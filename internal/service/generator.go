package service

import (
	"context"
	"fmt"
	"strings"

	"pdf-slide-synth/internal/domain"
)

const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"

	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

// NewGenerator builds the configured model backend. It returns
// domain.ErrModelNotConfigured when no provider or credentials are set.
func NewGenerator(ctx context.Context, cfg domain.Config, logger domain.Logger) (domain.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.GetModelProvider()))
	model := cfg.GetModelName()

	switch provider {
	case "", ProviderNone:
		return nil, domain.ErrModelNotConfigured
	case ProviderGemini:
		if cfg.GetGeminiAPIKey() == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", domain.ErrModelNotConfigured)
		}
		if model == "" {
			model = defaultGeminiModel
		}
		return NewGeminiGenerator(ctx, cfg.GetGeminiAPIKey(), model, logger)
	case ProviderVertex:
		if cfg.GetVertexProjectID() == "" || cfg.GetVertexLocation() == "" {
			return nil, fmt.Errorf("%w: VERTEX_PROJECT_ID and VERTEX_LOCATION are required", domain.ErrModelNotConfigured)
		}
		if model == "" {
			model = defaultGeminiModel
		}
		return NewVertexGenerator(ctx, cfg.GetVertexProjectID(), cfg.GetVertexLocation(), model, logger)
	case ProviderOpenAI:
		if cfg.GetOpenAIAPIKey() == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is empty", domain.ErrModelNotConfigured)
		}
		if model == "" {
			model = defaultOpenAIModel
		}
		return NewOpenAIGenerator(cfg.GetOpenAIAPIKey(), cfg.GetOpenAIBaseURL(), model, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrModelNotConfigured, provider)
	}
}
