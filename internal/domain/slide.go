package domain

import "strings"

// DiagramType governs the renderer's layout choice for a slide.
type DiagramType string

const (
	DiagramText        DiagramType = "text"
	DiagramBarChart    DiagramType = "bar_chart"
	DiagramPieChart    DiagramType = "pie_chart"
	DiagramProcessFlow DiagramType = "process_flow"
	DiagramTimeline    DiagramType = "timeline"
)

// ParseDiagramType maps free text onto the closed enumeration, defaulting to text.
func ParseDiagramType(s string) DiagramType {
	switch DiagramType(strings.ToLower(strings.TrimSpace(s))) {
	case DiagramBarChart:
		return DiagramBarChart
	case DiagramPieChart:
		return DiagramPieChart
	case DiagramProcessFlow:
		return DiagramProcessFlow
	case DiagramTimeline:
		return DiagramTimeline
	}
	return DiagramText
}

// IsChart reports whether the slide should carry an illustrative chart.
func (d DiagramType) IsChart() bool {
	return d != "" && d != DiagramText
}

// Theme selects a visual preset in the renderer.
type Theme string

const (
	ThemeExecutive Theme = "executive"
	ThemeCreative  Theme = "creative"
	ThemeMinimal   Theme = "minimal"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeExecutive, ThemeCreative, ThemeMinimal:
		return true
	}
	return false
}

const (
	DefaultSlideTitle    = "Untitled Slide"
	DefaultSlideCategory = "Section"
	NoContentBullet      = "No extractable content on this page"
)

// SlideRecord is one unit of presentation content.
type SlideRecord struct {
	Title       string      `json:"title"`
	Bullets     []string    `json:"bullets"`
	Category    string      `json:"category"`
	DiagramType DiagramType `json:"diagramType"`
	ImagePrompt string      `json:"imagePrompt"`
}

// Normalize returns a copy that satisfies the record invariants:
// non-empty title and bullets, a category and a known diagram type.
func (s SlideRecord) Normalize() SlideRecord {
	out := SlideRecord{
		Title:       strings.TrimSpace(s.Title),
		Category:    strings.TrimSpace(s.Category),
		DiagramType: ParseDiagramType(string(s.DiagramType)),
		ImagePrompt: strings.TrimSpace(s.ImagePrompt),
	}
	if out.Title == "" {
		out.Title = DefaultSlideTitle
	}
	if out.Category == "" {
		out.Category = DefaultSlideCategory
	}
	for _, b := range s.Bullets {
		if b = strings.TrimSpace(b); b != "" {
			out.Bullets = append(out.Bullets, b)
		}
	}
	if len(out.Bullets) == 0 {
		out.Bullets = []string{NoContentBullet}
	}
	return out
}

// HasImage reports whether the slide requests illustrative art.
func (s SlideRecord) HasImage() bool {
	return strings.TrimSpace(s.ImagePrompt) != ""
}

// SlideDeckVariant is one themed alternative deck.
type SlideDeckVariant struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Theme  Theme         `json:"theme"`
	Color  string        `json:"color"`
	Slides []SlideRecord `json:"slides"`
}

// VariantTemplate describes one of the standard variant slots.
type VariantTemplate struct {
	ID    string
	Name  string
	Theme Theme
	Color string
}

// StandardVariants lists the three variant slots in display order.
// The first entry is the default for previews and exports.
var StandardVariants = []VariantTemplate{
	{ID: "v1", Name: "Executive Summary", Theme: ThemeExecutive, Color: "#4F46E5"},
	{ID: "v2", Name: "Creative Deck", Theme: ThemeCreative, Color: "#8B5CF6"},
	{ID: "v3", Name: "Technical Details", Theme: ThemeMinimal, Color: "#0EA5E9"},
}

// NewVariant fills a template with slides.
func (t VariantTemplate) NewVariant(slides []SlideRecord) SlideDeckVariant {
	return SlideDeckVariant{
		ID:     t.ID,
		Name:   t.Name,
		Theme:  t.Theme,
		Color:  t.Color,
		Slides: slides,
	}
}
