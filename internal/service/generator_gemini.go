package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdf-slide-synth/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiGenerator calls the Gemini API with an API key.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger domain.Logger
}

func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, logger domain.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &GeminiGenerator{client: client, model: model, name: modelName, logger: logger}, nil
}

func (g *GeminiGenerator) Name() string { return ProviderGemini + ":" + g.name }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, schema *domain.Schema) (string, error) {
	model := *g.model
	if schema != nil {
		model.ResponseSchema = toGeminiSchema(schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if resp.UsageMetadata != nil {
		g.logger.Debug("Gemini usage", "prompt_tokens", resp.UsageMetadata.PromptTokenCount, "candidate_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	return sb.String(), nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func toGeminiSchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGeminiSchema(s.Items),
	}
	switch s.Type {
	case domain.SchemaObject:
		out.Type = genai.TypeObject
	case domain.SchemaArray:
		out.Type = genai.TypeArray
	default:
		out.Type = genai.TypeString
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toGeminiSchema(v)
		}
	}
	return out
}
