package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"
)

const (
	defaultMinFileSize = 100
	defaultMaxFileSize = 50 * 1024 * 1024
	docxSniffWindow    = 64 * 1024
	maxFileNameLength  = 255
)

var (
	pdfSignature      = []byte("%PDF")
	zipLocalHeader    = []byte{0x50, 0x4B, 0x03, 0x04}
	zipEmptyArchive   = []byte{0x50, 0x4B, 0x05, 0x06}
	docxMarkerEntries = []string{"word/document.xml", "[Content_Types].xml"}
)

// allowedMediaTypes maps each accepted extension to its media type allow-list.
var allowedMediaTypes = map[string][]string{
	"pdf":  {domain.MediaTypePDF},
	"docx": {domain.MediaTypeDOCX, domain.MediaTypeLegacyWord},
}

// StructureCheck performs a deep structural validation of a PDF.
type StructureCheck func(data []byte) error

// UploadValidator checks uploads against size, type and signature rules.
type UploadValidator struct {
	minSize   int64
	maxSize   int64
	sniff     bool
	structure StructureCheck
	logger    domain.Logger
}

// ValidatorOption customizes an UploadValidator.
type ValidatorOption func(*UploadValidator)

// WithSizeLimits overrides the accepted byte range.
func WithSizeLimits(minSize, maxSize int64) ValidatorOption {
	return func(v *UploadValidator) {
		if minSize > 0 {
			v.minSize = minSize
		}
		if maxSize > 0 {
			v.maxSize = maxSize
		}
	}
}

// WithSignatureSniffing toggles magic-number checks.
func WithSignatureSniffing(enabled bool) ValidatorOption {
	return func(v *UploadValidator) { v.sniff = enabled }
}

// WithStructureCheck adds a deep PDF validation step.
func WithStructureCheck(check StructureCheck) ValidatorOption {
	return func(v *UploadValidator) { v.structure = check }
}

// NewValidator creates a new validator instance
func NewValidator(logger domain.Logger, opts ...ValidatorOption) *UploadValidator {
	v := &UploadValidator{
		minSize: defaultMinFileSize,
		maxSize: defaultMaxFileSize,
		sniff:   true,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the checks in order and stops at the first failure.
func (v *UploadValidator) Validate(doc domain.UploadedDocument) error {
	size := int64(len(doc.Data))
	if doc.Size > size {
		size = doc.Size
	}

	if size == 0 || len(doc.Data) == 0 {
		return apperrors.NewValidationError("File is empty or corrupted")
	}
	if size < v.minSize {
		return apperrors.NewValidationError("File is empty or corrupted", "file is too small to be a valid document")
	}

	if size > v.maxSize {
		return apperrors.NewValidationError(fmt.Sprintf(
			"File too large: %.2fMB. Maximum size is %dMB.",
			float64(size)/1024/1024, v.maxSize/1024/1024,
		))
	}

	ext := doc.Extension()
	allowed, ok := allowedMediaTypes[ext]
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid file extension: .%s. Expected .pdf or .docx", ext))
	}

	mediaType := resolveMediaType(doc.MediaType, ext)
	if !containsFold(allowed, mediaType) {
		v.logger.Warn("Rejected upload with mismatched media type", "file", doc.FileName, "mediaType", doc.MediaType, "extension", ext)
		return apperrors.NewValidationError(fmt.Sprintf("File type mismatch: %s is not a valid media type for .%s files", mediaType, ext))
	}

	if v.sniff && !signatureMatches(doc.Data, ext) {
		return apperrors.NewValidationError(fmt.Sprintf(
			"File signature validation failed. This may not be a valid %s file.", strings.ToUpper(ext),
		))
	}

	if ext == "pdf" && v.structure != nil {
		if err := v.structure(doc.Data); err != nil {
			v.logger.Warn("PDF structure validation failed", "file", doc.FileName, "error", err)
			return apperrors.NewValidationError("File is empty or corrupted", "PDF structure validation failed")
		}
	}

	return nil
}

// resolveMediaType strips parameters and fills unknown declarations from the extension.
func resolveMediaType(declared, ext string) string {
	declared = strings.TrimSpace(declared)
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		declared = parsed
	}
	if declared == "" || strings.EqualFold(declared, domain.MediaTypeOctetStream) {
		if byExt := mime.TypeByExtension("." + ext); byExt != "" {
			declared, _, _ = mime.ParseMediaType(byExt)
		}
		if declared == "" || strings.EqualFold(declared, domain.MediaTypeOctetStream) {
			declared = allowedMediaTypes[ext][0]
		}
	}
	return strings.ToLower(declared)
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// signatureMatches compares leading bytes against known magic numbers.
func signatureMatches(data []byte, ext string) bool {
	switch ext {
	case "pdf":
		return bytes.HasPrefix(data, pdfSignature)
	case "docx":
		if !bytes.HasPrefix(data, zipLocalHeader) && !bytes.HasPrefix(data, zipEmptyArchive) {
			return false
		}
		return hasDOCXMarker(data)
	}
	return false
}

// hasDOCXMarker looks for a word-processing marker entry, first in the zip
// directory and then in the leading bytes of the archive.
func hasDOCXMarker(data []byte) bool {
	if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		for _, f := range zr.File {
			for _, marker := range docxMarkerEntries {
				if f.Name == marker {
					return true
				}
			}
		}
	}

	window := data
	if len(window) > docxSniffWindow {
		window = window[:docxSniffWindow]
	}
	for _, marker := range docxMarkerEntries {
		if bytes.Contains(window, []byte(marker)) {
			return true
		}
	}
	return false
}

var unsafeFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// SanitizeFileName removes path components and characters that are unsafe in
// file names or Content-Disposition headers.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = unsafeFileNameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	if r := []rune(name); len(r) > maxFileNameLength {
		name = string(r[:maxFileNameLength])
	}
	return strings.TrimSpace(name)
}
