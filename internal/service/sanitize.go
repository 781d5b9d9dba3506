package service

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const (
	imageServiceBase   = "https://image.pollinations.ai/prompt/"
	imagePromptSuffix  = " high quality, detailed, professional, 4k, no text"
	maxImagePromptLen  = 500
	maxThumbPromptLen  = 100
	defaultThumbnail   = "https://images.unsplash.com/photo-1557804506-669a67965ba0?w=400&h=300&fit=crop"
	defaultExportTitle = "presentation"
)

// SanitizeColor keeps at most six hex digits. An empty result falls back.
func SanitizeColor(color, fallback string) string {
	var b strings.Builder
	for _, r := range color {
		if b.Len() == 6 {
			break
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// SanitizePrompt makes free text safe to embed in an image URL path.
func SanitizePrompt(prompt string) string {
	var b strings.Builder
	for _, r := range prompt {
		switch {
		case strings.ContainsRune(`<>"'&`, r):
			continue
		case r == '\r' || r == '\n' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	return truncateRunes(strings.TrimSpace(b.String()), maxImagePromptLen)
}

// SlideImageURL builds the illustrative image request for a content slide.
func SlideImageURL(baseURL, prompt string, seed int) string {
	full := SanitizePrompt(prompt) + imagePromptSuffix
	return fmt.Sprintf("%s%s?width=800&height=600&nologo=true&seed=%d", imageBase(baseURL), encodeURIComponent(full), seed)
}

// CoverBackgroundURL builds the abstract cover art request for a color.
func CoverBackgroundURL(baseURL, hex string) string {
	return fmt.Sprintf("%sabstract%%20art%%20artistic%%20gradient%%20%s?width=1280&height=720&nologo=true", imageBase(baseURL), hex)
}

// ThumbnailURL derives a job thumbnail from the first image prompt.
func ThumbnailURL(baseURL, prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultThumbnail
	}
	return fmt.Sprintf("%s%s?width=400&height=300&nologo=true", imageBase(baseURL), encodeURIComponent(truncateRunes(prompt, maxThumbPromptLen)))
}

func imageBase(baseURL string) string {
	if baseURL == "" {
		return imageServiceBase
	}
	return strings.TrimSuffix(baseURL, "/") + "/"
}

// encodeURIComponent matches the browser function: spaces become %20 and
// the unreserved marks !'()* are kept.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, keep := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(keep), keep)
	}
	return escaped
}

// ExportBaseName is the source title up to its first '.'.
func ExportBaseName(title string) string {
	base := title
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return defaultExportTitle
	}
	return base
}
