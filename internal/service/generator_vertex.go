package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdf-slide-synth/internal/domain"

	"cloud.google.com/go/vertexai/genai"
)

// VertexGenerator calls Gemini through Vertex AI using application default
// credentials.
type VertexGenerator struct {
	client    *genai.Client
	modelName string
	logger    domain.Logger
}

func NewVertexGenerator(ctx context.Context, projectID, location, modelName string, logger domain.Logger) (*VertexGenerator, error) {
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}
	return &VertexGenerator{client: client, modelName: modelName, logger: logger}, nil
}

func (v *VertexGenerator) Name() string { return ProviderVertex + ":" + v.modelName }

func (v *VertexGenerator) Generate(ctx context.Context, prompt string, schema *domain.Schema) (string, error) {
	model := v.client.GenerativeModel(v.modelName)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}
	if schema != nil {
		model.ResponseSchema = toVertexSchema(schema)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("vertex returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if resp.UsageMetadata != nil {
		v.logger.Debug("Vertex usage", "prompt_tokens", resp.UsageMetadata.PromptTokenCount, "candidate_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	return sb.String(), nil
}

func (v *VertexGenerator) Close() error {
	return v.client.Close()
}

func toVertexSchema(s *domain.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toVertexSchema(s.Items),
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
		for k, p := range s.Properties {
			out.Properties[k] = toVertexSchema(p)
		}
	}
	return out
}
