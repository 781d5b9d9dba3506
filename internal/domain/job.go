package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a conversion job.
type JobStatus string

const (
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusProcessing JobStatus = "Processing"
	JobStatusFailed     JobStatus = "Failed"
)

// ExportFormat is the binary produced by the renderer.
type ExportFormat string

const (
	ExportFormatPPTX ExportFormat = "PPTX"
	ExportFormatPDF  ExportFormat = "PDF"
)

// ParseExportFormat accepts "pptx" or "pdf" in any case. Empty means PPTX.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(ExportFormatPPTX):
		return ExportFormatPPTX, nil
	case string(ExportFormatPDF):
		return ExportFormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Extension returns the file extension for the format, without a dot.
func (f ExportFormat) Extension() string {
	return strings.ToLower(string(f))
}

// Synthesis strategies recorded on a job.
const (
	SynthesisModel     = "model"
	SynthesisHeuristic = "heuristic"
)

// ConversionJob is the persisted result of one pipeline run.
type ConversionJob struct {
	ID               string             `json:"id"`
	UserID           string             `json:"userId"`
	Title            string             `json:"title"`
	OriginalFileName string             `json:"originalFileName"`
	PageCount        int                `json:"pageCount"`
	SlideCount       int                `json:"slideCount"`
	Status           JobStatus          `json:"status"`
	CreatedAt        time.Time          `json:"timestamp"`
	ThumbnailURL     string             `json:"thumbnailUrl,omitempty"`
	Format           ExportFormat       `json:"format"`
	FileSize         string             `json:"fileSize"`
	Source           string             `json:"source"`
	Synthesis        string             `json:"synthesis"`
	Variants         []SlideDeckVariant `json:"variants"`
}

// Validate checks the fields required for persistence.
func (j *ConversionJob) Validate() error {
	if j.ID == "" {
		return &ValidationError{Field: "id", Message: "job ID is required"}
	}
	if j.Title == "" {
		return &ValidationError{Field: "title", Message: "job title is required"}
	}
	if len(j.Variants) == 0 {
		return &ValidationError{Field: "variants", Message: "at least one variant is required"}
	}
	if len(j.Variants) > len(StandardVariants) {
		return &ValidationError{Field: "variants", Message: fmt.Sprintf("at most %d variants are allowed", len(StandardVariants))}
	}
	return nil
}

// Variant returns the variant with the given id. An empty id selects the first variant.
func (j *ConversionJob) Variant(id string) (*SlideDeckVariant, bool) {
	if len(j.Variants) == 0 {
		return nil, false
	}
	if id == "" {
		return &j.Variants[0], true
	}
	for i := range j.Variants {
		if j.Variants[i].ID == id {
			return &j.Variants[i], true
		}
	}
	return nil, false
}

// FormatFileSize renders a byte count as "X.XX MB".
func FormatFileSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}

// RenderRequest asks the renderer for one binary of one variant.
type RenderRequest struct {
	Variant     SlideDeckVariant
	SourceTitle string
	Format      ExportFormat
}

// RenderedFile is a finished export ready for download.
type RenderedFile struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}
