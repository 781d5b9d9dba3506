package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionJob_Validate(t *testing.T) {
	variant := StandardVariants[0].NewVariant([]SlideRecord{{Title: "t", Bullets: []string{"b"}}})

	tests := []struct {
		name   string
		job    ConversionJob
		errMsg string
	}{
		{name: "valid", job: ConversionJob{ID: "job-1", Title: "Report", Variants: []SlideDeckVariant{variant}}},
		{name: "missing id", job: ConversionJob{Title: "Report", Variants: []SlideDeckVariant{variant}}, errMsg: "id: job ID is required"},
		{name: "missing title", job: ConversionJob{ID: "job-1", Variants: []SlideDeckVariant{variant}}, errMsg: "title: job title is required"},
		{name: "no variants", job: ConversionJob{ID: "job-1", Title: "Report"}, errMsg: "variants: at least one variant is required"},
		{
			name:   "too many variants",
			job:    ConversionJob{ID: "job-1", Title: "Report", Variants: []SlideDeckVariant{variant, variant, variant, variant}},
			errMsg: "variants: at most 3 variants are allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.errMsg, err.Error())
		})
	}
}

func TestConversionJob_Variant(t *testing.T) {
	job := ConversionJob{}
	_, ok := job.Variant("")
	assert.False(t, ok)

	for _, tmpl := range StandardVariants {
		job.Variants = append(job.Variants, tmpl.NewVariant(nil))
	}

	v, ok := job.Variant("")
	require.True(t, ok)
	assert.Equal(t, "v1", v.ID)

	v, ok = job.Variant("v3")
	require.True(t, ok)
	assert.Equal(t, ThemeMinimal, v.Theme)

	_, ok = job.Variant("v9")
	assert.False(t, ok)
}

func TestParseExportFormat(t *testing.T) {
	f, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPPTX, f)

	f, err = ParseExportFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, f)
	assert.Equal(t, "pdf", f.Extension())

	_, err = ParseExportFormat("keynote")
	assert.Error(t, err)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "1.00 MB", FormatFileSize(1024*1024))
	assert.Equal(t, "0.00 MB", FormatFileSize(0))
	assert.Equal(t, "2.50 MB", FormatFileSize(2621440))
}
