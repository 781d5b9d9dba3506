package service

import "pdf-slide-synth/internal/domain"

// ThemePreset is the visual record consumed by both renderers.
type ThemePreset struct {
	Primary        string
	Secondary      string
	Accent         string
	Text           string
	Font           string
	ChartPalette   []string
	AccentBar      bool
	AbstractCover  bool
	TitleInPrimary bool
}

var themePresets = map[domain.Theme]ThemePreset{
	domain.ThemeExecutive: {
		Primary:        "0F172A",
		Secondary:      "F8FAFC",
		Accent:         "4F46E5",
		Text:           "334155",
		Font:           "Arial",
		ChartPalette:   []string{"4F46E5", "10B981", "F59E0B"},
		AccentBar:      true,
		TitleInPrimary: true,
	},
	domain.ThemeCreative: {
		Primary:       "4C1D95",
		Secondary:     "FAF5FF",
		Accent:        "D946EF",
		Text:          "2D0A31",
		Font:          "Georgia",
		ChartPalette:  []string{"D946EF", "8B5CF6", "06B6D4"},
		AbstractCover: true,
	},
	domain.ThemeMinimal: {
		Primary:      "000000",
		Secondary:    "FFFFFF",
		Accent:       "525252",
		Text:         "171717",
		Font:         "Courier New",
		ChartPalette: []string{"171717", "737373", "A3A3A3"},
	},
}

// PresetFor returns the preset for theme, defaulting to executive.
func PresetFor(theme domain.Theme) ThemePreset {
	if p, ok := themePresets[theme]; ok {
		return p
	}
	return themePresets[domain.ThemeExecutive]
}

// Fixed colors shared by every theme.
const (
	colorWhite        = "FFFFFF"
	colorMuted        = "CBD5E1"
	colorImageFill    = "F1F5F9"
	colorImageLine    = "E2E8F0"
	colorCaption      = "94A3B8"
	chartSeriesName   = "Projected Metrics"
	imageCaptionLabel = "AI Generated Visual"
)

var (
	chartCategories = []string{"Q1", "Q2", "Q3", "Q4"}
	chartValues     = []float64{25, 40, 55, 80}
)
