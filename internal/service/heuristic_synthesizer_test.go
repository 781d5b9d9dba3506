package service

import (
	"context"
	"strings"
	"testing"

	"pdf-slide-synth/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeHeuristic_SentenceSplitting(t *testing.T) {
	page := "Revenue grew by twenty percent this year. Costs were flat across every region! " +
		"Hiring will accelerate in the second half? Short one. " + strings.Repeat("x", 200)

	slides := SynthesizeHeuristic([]string{page})
	require.Len(t, slides, 1)

	s := slides[0]
	assert.Equal(t, "Page 1", s.Title)
	assert.Equal(t, "Content", s.Category)
	assert.Equal(t, domain.DiagramText, s.DiagramType)
	assert.Empty(t, s.ImagePrompt)
	assert.Equal(t, []string{
		"Revenue grew by twenty percent this year",
		"Costs were flat across every region",
		"Hiring will accelerate in the second half",
		strings.Repeat("x", 150),
	}, s.Bullets)
}

func TestSynthesizeHeuristic_AtMostFiveBullets(t *testing.T) {
	sentence := "This sentence is comfortably longer than twenty characters. "
	slides := SynthesizeHeuristic([]string{strings.Repeat(sentence, 12)})
	require.Len(t, slides, 1)
	assert.Len(t, slides[0].Bullets, 5)
}

func TestSynthesizeHeuristic_ShortFragmentsFallBackToChunks(t *testing.T) {
	slides := SynthesizeHeuristic([]string{"Short. Short. Short."})
	require.Len(t, slides, 1)
	assert.Equal(t, []string{"Short. Short. Short."}, slides[0].Bullets)
}

func TestSynthesizeHeuristic_ChunkingCapsLength(t *testing.T) {
	long := strings.Repeat("abcdefghij", 100) // 1000 chars, no sentence breaks
	slides := SynthesizeHeuristic([]string{"tiny.\n" + long})
	require.Len(t, slides, 1)

	// The single 1000-char fragment survives sentence filtering, so it is
	// truncated rather than chunked.
	assert.Equal(t, []string{strings.Repeat("abcdefghij", 15)}, slides[0].Bullets)

	chunked := SynthesizeHeuristic([]string{"a. b. c.\n" + strings.Repeat("é", 20)})
	assert.Equal(t, []string{"a. b. c.", strings.Repeat("é", 20)}, chunked[0].Bullets)
}

func TestSynthesizeHeuristic_EmptyPage(t *testing.T) {
	slides := SynthesizeHeuristic([]string{"   \n  "})
	require.Len(t, slides, 1)
	assert.Equal(t, []string{domain.NoContentBullet}, slides[0].Bullets)
}

func TestSynthesizeHeuristic_TotalAndIdempotent(t *testing.T) {
	pages := []string{
		"",
		"Short.",
		"A reasonably long sentence about quarterly revenue. Another reasonably long sentence follows here.",
		strings.Repeat("word ", 500),
	}

	first := SynthesizeHeuristic(pages)
	second := SynthesizeHeuristic(pages)
	assert.Equal(t, first, second)
	require.Len(t, first, len(pages))

	for i, s := range first {
		assert.NotEmpty(t, s.Bullets, "page %d", i+1)
		assert.LessOrEqual(t, len(s.Bullets), 5, "page %d", i+1)
		for _, b := range s.Bullets {
			assert.LessOrEqual(t, len([]rune(b)), 150)
		}
	}
}

func TestHeuristicSynthesizer_Synthesize(t *testing.T) {
	result, err := NewHeuristicSynthesizer().Synthesize(context.Background(), []string{"Page one content that is long enough."})
	require.NoError(t, err)

	assert.Equal(t, domain.SynthesisHeuristic, result.Strategy)
	require.Len(t, result.Variants, 3)
	assert.Equal(t, []domain.Theme{domain.ThemeExecutive, domain.ThemeCreative, domain.ThemeMinimal},
		[]domain.Theme{result.Variants[0].Theme, result.Variants[1].Theme, result.Variants[2].Theme})

	// Variants must not share bullet storage.
	result.Variants[0].Slides[0].Bullets[0] = "changed"
	assert.NotEqual(t, "changed", result.Variants[1].Slides[0].Bullets[0])
}
