package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"pdf-slide-synth/internal/domain"
)

const allVariants = "all"

// mediaTypeFor guesses the upload media type from the file extension.
// Unknown extensions are left to signature sniffing.
func mediaTypeFor(doc domain.UploadedDocument) string {
	switch doc.Kind() {
	case domain.DocumentKindPDF:
		return domain.MediaTypePDF
	case domain.DocumentKindDOCX:
		return domain.MediaTypeDOCX
	}
	return domain.MediaTypeOctetStream
}

// loadDocument reads path into an UploadedDocument.
func loadDocument(path string) (domain.UploadedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.UploadedDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc := domain.NewUploadedDocument(filepath.Base(path), "", data)
	doc.MediaType = mediaTypeFor(doc)
	return doc, nil
}

// writeFiles stores rendered files under dir and returns their paths.
func writeFiles(dir string, files []*domain.RenderedFile) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.FileName)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func parseFormat(s string) (domain.ExportFormat, error) {
	format, err := domain.ParseExportFormat(s)
	if err != nil {
		return "", fmt.Errorf("unsupported format %q (use pptx or pdf)", s)
	}
	return format, nil
}
