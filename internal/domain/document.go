package domain

import (
	"path/filepath"
	"strings"
)

// DocumentKind identifies the supported upload formats.
type DocumentKind string

const (
	DocumentKindPDF  DocumentKind = "pdf"
	DocumentKindDOCX DocumentKind = "docx"
)

// Media types accepted for uploads.
const (
	MediaTypePDF         = "application/pdf"
	MediaTypeDOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeLegacyWord  = "application/msword"
	MediaTypeOctetStream = "application/octet-stream"
	MediaTypePPTX        = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// UploadedDocument is the raw upload as received from a client.
// It is treated as immutable once constructed.
type UploadedDocument struct {
	Data      []byte `json:"-"`
	MediaType string `json:"media_type"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size"`
}

// NewUploadedDocument builds an UploadedDocument and derives Size from data.
func NewUploadedDocument(fileName, mediaType string, data []byte) UploadedDocument {
	return UploadedDocument{
		Data:      data,
		MediaType: mediaType,
		FileName:  fileName,
		Size:      int64(len(data)),
	}
}

// Extension returns the lower-cased file extension without the leading dot.
func (d UploadedDocument) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.FileName)), ".")
}

// Kind maps the extension onto a DocumentKind. Unknown extensions return "".
func (d UploadedDocument) Kind() DocumentKind {
	switch d.Extension() {
	case "pdf":
		return DocumentKindPDF
	case "docx":
		return DocumentKindDOCX
	}
	return ""
}

// ExtractionResult holds per-page plain text in source order.
type ExtractionResult struct {
	Pages     []string `json:"pages"`
	PageCount int      `json:"page_count"`
}

// FullText joins all pages with a blank line between them.
func (r *ExtractionResult) FullText() string {
	return strings.Join(r.Pages, PageSeparator)
}

// PageSeparator separates pages in whole-document text.
const PageSeparator = "\n\n"

// ProgressFunc reports incremental progress. done never exceeds total.
type ProgressFunc func(done, total int)
