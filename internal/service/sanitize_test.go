package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeColor(t *testing.T) {
	assert.Equal(t, "4F46E5", SanitizeColor("#4F46E5;x", "000000"))
	assert.Equal(t, "abc123", SanitizeColor("abc123ff", "000000"))
	assert.Equal(t, "0F172A", SanitizeColor("zzz", "0F172A"))
}

func TestSanitizePrompt(t *testing.T) {
	assert.Equal(t, "a cat  on a mat", SanitizePrompt("  <a cat>\n\ton a 'mat'&  "))
	assert.Equal(t, "bell", SanitizePrompt("be\x07ll"))
	assert.Len(t, []rune(SanitizePrompt(strings.Repeat("é", 900))), maxImagePromptLen)
}

func TestSlideImageURL(t *testing.T) {
	url := SlideImageURL("", "mountain lake", 3)
	assert.Equal(t,
		"https://image.pollinations.ai/prompt/mountain%20lake%20high%20quality%2C%20detailed%2C%20professional%2C%204k%2C%20no%20text?width=800&height=600&nologo=true&seed=3",
		url)
}

func TestCoverBackgroundURL(t *testing.T) {
	assert.Equal(t,
		"https://image.pollinations.ai/prompt/abstract%20art%20artistic%20gradient%204C1D95?width=1280&height=720&nologo=true",
		CoverBackgroundURL("", "4C1D95"))
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, defaultThumbnail, ThumbnailURL("", "  "))
	assert.Equal(t,
		"https://image.pollinations.ai/prompt/city%20(night)?width=400&height=300&nologo=true",
		ThumbnailURL("https://image.pollinations.ai/prompt", "city (night)"))

	long := ThumbnailURL("", strings.Repeat("a", 300))
	assert.Contains(t, long, strings.Repeat("a", 100)+"?")
	assert.NotContains(t, long, strings.Repeat("a", 101))
}

func TestExportBaseName(t *testing.T) {
	assert.Equal(t, "Report", ExportBaseName("Report.v2.final"))
	assert.Equal(t, "presentation", ExportBaseName(".hidden"))
	assert.Equal(t, "Annual plan", ExportBaseName("Annual plan"))
}
