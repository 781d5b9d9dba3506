package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pdf-slide-synth/internal/domain"
)

const (
	minFragmentLength  = 20
	maxBulletLength    = 150
	maxHeuristicPoints = 5
	heuristicCategory  = "Content"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// HeuristicSynthesizer builds one slide per page with rule-based splitting.
// It needs no network and always terminates.
type HeuristicSynthesizer struct{}

// NewHeuristicSynthesizer creates the offline synthesizer.
func NewHeuristicSynthesizer() *HeuristicSynthesizer {
	return &HeuristicSynthesizer{}
}

// Synthesize fills every standard variant with the same heuristic slides.
func (h *HeuristicSynthesizer) Synthesize(ctx context.Context, pages []string) (*domain.SynthesisResult, error) {
	slides := SynthesizeHeuristic(pages)
	return &domain.SynthesisResult{
		Variants: variantsFromSlides(slides),
		Strategy: domain.SynthesisHeuristic,
	}, nil
}

func variantsFromSlides(slides []domain.SlideRecord) []domain.SlideDeckVariant {
	variants := make([]domain.SlideDeckVariant, 0, len(domain.StandardVariants))
	for _, tmpl := range domain.StandardVariants {
		variants = append(variants, tmpl.NewVariant(cloneSlides(slides)))
	}
	return variants
}

func cloneSlides(slides []domain.SlideRecord) []domain.SlideRecord {
	out := make([]domain.SlideRecord, len(slides))
	for i, s := range slides {
		s.Bullets = append([]string(nil), s.Bullets...)
		out[i] = s
	}
	return out
}

// SynthesizeHeuristic returns exactly one slide per page.
func SynthesizeHeuristic(pages []string) []domain.SlideRecord {
	slides := make([]domain.SlideRecord, 0, len(pages))
	for i, page := range pages {
		slides = append(slides, heuristicSlide(page, i+1))
	}
	return slides
}

func heuristicSlide(pageText string, pageNumber int) domain.SlideRecord {
	bullets := sentenceBullets(pageText)
	if len(bullets) == 0 {
		bullets = chunkBullets(pageText)
	}
	if len(bullets) == 0 {
		bullets = []string{domain.NoContentBullet}
	}
	return domain.SlideRecord{
		Title:       fmt.Sprintf("Page %d", pageNumber),
		Bullets:     bullets,
		Category:    heuristicCategory,
		DiagramType: domain.DiagramText,
		ImagePrompt: "",
	}
}

// sentenceBullets keeps sentence-like fragments longer than the minimum.
func sentenceBullets(text string) []string {
	var bullets []string
	for _, fragment := range sentenceBoundary.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if len([]rune(fragment)) <= minFragmentLength {
			continue
		}
		bullets = append(bullets, truncateRunes(fragment, maxBulletLength))
		if len(bullets) == maxHeuristicPoints {
			break
		}
	}
	return bullets
}

// chunkBullets cuts each line into fixed-size pieces.
func chunkBullets(text string) []string {
	var bullets []string
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		runes := []rune(line)
		for start := 0; start < len(runes); start += maxBulletLength {
			end := start + maxBulletLength
			if end > len(runes) {
				end = len(runes)
			}
			chunk := strings.TrimSpace(string(runes[start:end]))
			if chunk == "" {
				continue
			}
			bullets = append(bullets, chunk)
			if len(bullets) == maxHeuristicPoints {
				return bullets
			}
		}
	}
	return bullets
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
