package service

import (
	"context"
	"errors"
	"fmt"

	"pdf-slide-synth/internal/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// OpenAIGenerator talks to any OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger domain.Logger
}

// NewOpenAIGenerator creates a client. An empty baseURL keeps the default.
func NewOpenAIGenerator(apiKey, baseURL, model string, logger domain.Logger) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger,
	}
}

func (o *OpenAIGenerator) Name() string { return ProviderOpenAI + ":" + o.model }

func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string, schema *domain.Schema) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if schema != nil {
		def := toJSONSchema(schema)
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "slide_decks",
				Schema: &def,
			},
		}
	} else {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			return "", fmt.Errorf("openai generate: %w", &HTTPStatusError{StatusCode: apiErr.HTTPStatusCode, Status: apiErr.Message})
		}
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	o.logger.Debug("OpenAI usage", "prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

func toJSONSchema(s *domain.Schema) jsonschema.Definition {
	def := jsonschema.Definition{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	switch s.Type {
	case domain.SchemaObject:
		def.Type = jsonschema.Object
	case domain.SchemaArray:
		def.Type = jsonschema.Array
	default:
		def.Type = jsonschema.String
	}
	if s.Items != nil {
		items := toJSONSchema(s.Items)
		def.Items = &items
	}
	if len(s.Properties) > 0 {
		def.Properties = make(map[string]jsonschema.Definition, len(s.Properties))
		for k, p := range s.Properties {
			def.Properties[k] = toJSONSchema(p)
		}
	}
	return def
}
