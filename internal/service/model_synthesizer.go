package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pdf-slide-synth/internal/domain"
)

const (
	DefaultSynthesisTimeout = 120 * time.Second
	DefaultSynthesisRetries = 2
	DefaultMaxPromptChars   = 800000

	deckKeyExecutive = "executiveDeck"
	deckKeyCreative  = "creativeDeck"
	deckKeyTechnical = "technicalDeck"
)

// deckOrder maps response keys onto the standard variant slots.
var deckOrder = []string{deckKeyExecutive, deckKeyCreative, deckKeyTechnical}

// ModelDecks is the parsed three-deck model response.
type ModelDecks struct {
	ExecutiveDeck []domain.SlideRecord `json:"executiveDeck"`
	CreativeDeck  []domain.SlideRecord `json:"creativeDeck"`
	TechnicalDeck []domain.SlideRecord `json:"technicalDeck"`
}

// SlideCount is the total number of slides across the three decks.
func (d *ModelDecks) SlideCount() int {
	if d == nil {
		return 0
	}
	return len(d.ExecutiveDeck) + len(d.CreativeDeck) + len(d.TechnicalDeck)
}

// Variants maps the decks onto v1, v2 and v3 in order.
func (d *ModelDecks) Variants() []domain.SlideDeckVariant {
	decks := [][]domain.SlideRecord{d.ExecutiveDeck, d.CreativeDeck, d.TechnicalDeck}
	variants := make([]domain.SlideDeckVariant, 0, len(domain.StandardVariants))
	for i, tmpl := range domain.StandardVariants {
		variants = append(variants, tmpl.NewVariant(decks[i]))
	}
	return variants
}

// ModelSynthesizer asks a generative model for three decks and falls back to
// the heuristic synthesizer when the model is missing or gives up.
type ModelSynthesizer struct {
	generator domain.Generator
	fallback  *HeuristicSynthesizer
	logger    domain.Logger

	timeout  time.Duration
	policy   RetryPolicy
	maxChars int
}

// ModelOption configures a ModelSynthesizer.
type ModelOption func(*ModelSynthesizer)

// WithSynthesisTimeout sets the per-attempt timeout.
func WithSynthesisTimeout(d time.Duration) ModelOption {
	return func(m *ModelSynthesizer) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithRetryPolicy replaces the retry policy.
func WithRetryPolicy(p RetryPolicy) ModelOption {
	return func(m *ModelSynthesizer) { m.policy = p }
}

// WithMaxPromptChars caps how much document text goes into the prompt.
func WithMaxPromptChars(n int) ModelOption {
	return func(m *ModelSynthesizer) {
		if n > 0 {
			m.maxChars = n
		}
	}
}

// NewModelSynthesizer creates a synthesizer over generator. A nil generator
// makes every call take the heuristic path.
func NewModelSynthesizer(generator domain.Generator, logger domain.Logger, opts ...ModelOption) *ModelSynthesizer {
	m := &ModelSynthesizer{
		generator: generator,
		fallback:  NewHeuristicSynthesizer(),
		logger:    logger,
		timeout:   DefaultSynthesisTimeout,
		policy:    DefaultRetryPolicy(),
		maxChars:  DefaultMaxPromptChars,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Synthesize prefers the model and falls back to one heuristic slide per page.
func (m *ModelSynthesizer) Synthesize(ctx context.Context, pages []string) (*domain.SynthesisResult, error) {
	if m.generator == nil {
		m.logger.Info("Model backend not configured, using heuristic synthesis", "pages", len(pages))
		return m.fallback.Synthesize(ctx, pages)
	}

	fullText := strings.Join(pages, domain.PageSeparator)
	decks, err := m.SynthesizeWithModel(ctx, fullText, m.timeout, m.policy.MaxRetries)
	if err != nil {
		// Only caller cancellation surfaces here.
		return nil, err
	}
	if decks.SlideCount() == 0 {
		m.logger.Warn("Model synthesis produced no slides, using heuristic synthesis", "backend", m.generator.Name())
		return m.fallback.Synthesize(ctx, pages)
	}

	m.logger.Info("Model synthesis completed",
		"backend", m.generator.Name(),
		"executive", len(decks.ExecutiveDeck),
		"creative", len(decks.CreativeDeck),
		"technical", len(decks.TechnicalDeck),
	)
	return &domain.SynthesisResult{
		Variants: decks.Variants(),
		Strategy: domain.SynthesisModel,
	}, nil
}

// SynthesizeWithModel runs the retried, timed model call. It returns (nil, nil)
// when the backend is missing or all attempts fail; a non-nil error means the
// caller's context ended.
func (m *ModelSynthesizer) SynthesizeWithModel(ctx context.Context, fullText string, timeout time.Duration, maxRetries int) (*ModelDecks, error) {
	if m.generator == nil {
		m.logger.Warn("Model synthesis requested without a configured backend")
		return nil, nil
	}

	prompt := BuildDeckPrompt(truncateRunes(fullText, m.maxChars))
	schema := DeckSchema()

	policy := m.policy
	policy.MaxRetries = maxRetries

	decks, res, err := WithRetry(ctx, policy, IsTransient, m.logger, "model_synthesis",
		func(ctx context.Context, attempt int) (*ModelDecks, error) {
			raw, err := WithTimeout(ctx, timeout, func(ctx context.Context) (string, error) {
				return m.generator.Generate(ctx, prompt, schema)
			})
			if err != nil {
				return nil, err
			}
			return ParseModelDecks(raw)
		})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		m.logger.Error("Model synthesis exhausted", err, "backend", m.generator.Name(), "attempts", res.Attempts)
		return nil, nil
	}
	return decks, nil
}

// BuildDeckPrompt assembles the three-deck instruction around the source text.
func BuildDeckPrompt(source string) string {
	var b strings.Builder
	b.WriteString("You are an expert presentation architect. Turn the source document below into three distinct slide decks.\n\n")
	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("- Carry over every statistic, name, fact and figure from the source. Do not summarize away detail.\n")
	b.WriteString("- When the document is dense, add more slides instead of compressing content.\n")
	b.WriteString("- Only request an image when the slide genuinely benefits from a visual. For chart or data-heavy slides return an empty image prompt.\n\n")
	b.WriteString("SOURCE DOCUMENT:\n")
	b.WriteString(source)
	b.WriteString("\n\nDECKS:\n")
	b.WriteString("1. executiveDeck: ROI, outcomes, business impact and strategic decisions.\n")
	b.WriteString("2. creativeDeck: narrative driven, vision, future and human impact.\n")
	b.WriteString("3. technicalDeck: granular data, methodology, implementation detail and rigorous facts.\n\n")
	b.WriteString("Each deck covers the whole source. For every slide provide:\n")
	b.WriteString("- title: a strong descriptive headline\n")
	b.WriteString("- bullets: 6-10 detailed points with specific numbers and facts from the text\n")
	b.WriteString("- category: a section header\n")
	b.WriteString("- diagramType: one of text, bar_chart, pie_chart, process_flow, timeline\n")
	b.WriteString("- imagePrompt: an optional photorealistic image description, or an empty string\n\n")
	b.WriteString("OUTPUT: a JSON object with the arrays executiveDeck, creativeDeck and technicalDeck.\n")
	return b.String()
}

// DeckSchema describes the expected response for schema-aware backends.
func DeckSchema() *domain.Schema {
	slide := &domain.Schema{
		Type: domain.SchemaObject,
		Properties: map[string]*domain.Schema{
			"title":       {Type: domain.SchemaString},
			"bullets":     {Type: domain.SchemaArray, Items: &domain.Schema{Type: domain.SchemaString}},
			"category":    {Type: domain.SchemaString},
			"diagramType": {Type: domain.SchemaString},
			"imagePrompt": {Type: domain.SchemaString, Nullable: true},
		},
		Required: []string{"title", "bullets", "category", "diagramType"},
	}
	props := make(map[string]*domain.Schema, len(deckOrder))
	for _, key := range deckOrder {
		props[key] = &domain.Schema{Type: domain.SchemaArray, Items: slide}
	}
	return &domain.Schema{
		Type:       domain.SchemaObject,
		Properties: props,
		Required:   append([]string(nil), deckOrder...),
	}
}

// ParseModelDecks decodes and validates a model response. Malformed
// responses are wrapped with domain.ErrNonRetryable.
func ParseModelDecks(raw string) (*ModelDecks, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, errors.New("model returned empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", domain.ErrNonRetryable, err)
	}
	for _, key := range deckOrder {
		value, ok := fields[key]
		if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return nil, fmt.Errorf("%w: response missing %s", domain.ErrNonRetryable, key)
		}
		if trimmed := bytes.TrimSpace(value); len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, fmt.Errorf("%w: %s is not an array", domain.ErrNonRetryable, key)
		}
	}

	var decks ModelDecks
	if err := json.Unmarshal([]byte(body), &decks); err != nil {
		return nil, fmt.Errorf("%w: invalid slide records: %v", domain.ErrNonRetryable, err)
	}
	decks.ExecutiveDeck = cleanDeck(decks.ExecutiveDeck)
	decks.CreativeDeck = cleanDeck(decks.CreativeDeck)
	decks.TechnicalDeck = cleanDeck(decks.TechnicalDeck)
	return &decks, nil
}

func cleanDeck(slides []domain.SlideRecord) []domain.SlideRecord {
	out := make([]domain.SlideRecord, 0, len(slides))
	for _, s := range slides {
		s.Title = StripMarkup(s.Title)
		s.Category = StripMarkup(s.Category)
		s.ImagePrompt = StripMarkup(s.ImagePrompt)
		bullets := make([]string, 0, len(s.Bullets))
		for _, b := range s.Bullets {
			bullets = append(bullets, StripMarkup(b))
		}
		s.Bullets = bullets
		out = append(out, s.Normalize())
	}
	return out
}

// stripCodeFence unwraps ```json ... ``` blocks some models emit despite
// being asked for raw JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
