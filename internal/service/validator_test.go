package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePDF(size int) []byte {
	data := bytes.Repeat([]byte(" "), size)
	copy(data, "%PDF-1.7\n")
	return data
}

func fakeDOCX(t *testing.T) []byte {
	t.Helper()
	return buildDOCX(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Hello there, this is a document body.</w:t></w:r></w:p></w:body></w:document>`)
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	return buildZip(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   documentXML,
	})
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(NewMockLogger())
	docx := fakeDOCX(t)

	tests := []struct {
		name    string
		doc     domain.UploadedDocument
		wantErr string
	}{
		{
			name: "valid pdf",
			doc:  domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, fakePDF(2048)),
		},
		{
			name: "valid docx",
			doc:  domain.NewUploadedDocument("report.docx", domain.MediaTypeDOCX, docx),
		},
		{
			name: "legacy word media type accepted for docx",
			doc:  domain.NewUploadedDocument("report.docx", domain.MediaTypeLegacyWord, docx),
		},
		{
			name: "octet stream resolved from extension",
			doc:  domain.NewUploadedDocument("report.pdf", domain.MediaTypeOctetStream, fakePDF(2048)),
		},
		{
			name:    "empty file",
			doc:     domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, nil),
			wantErr: "File is empty or corrupted",
		},
		{
			name:    "below minimum size",
			doc:     domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, fakePDF(99)),
			wantErr: "File is empty or corrupted",
		},
		{
			name:    "wrong extension",
			doc:     domain.NewUploadedDocument("report.txt", "text/plain", fakePDF(2048)),
			wantErr: "Invalid file extension: .txt",
		},
		{
			name:    "media type mismatch is rejected",
			doc:     domain.NewUploadedDocument("report.pdf", domain.MediaTypeDOCX, fakePDF(2048)),
			wantErr: "File type mismatch",
		},
		{
			name:    "pdf signature mismatch",
			doc:     domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, bytes.Repeat([]byte("x"), 2048)),
			wantErr: "This may not be a valid PDF file.",
		},
		{
			name:    "arbitrary zip is not a docx",
			doc:     domain.NewUploadedDocument("report.docx", domain.MediaTypeDOCX, buildZip(t, map[string]string{"notes.txt": strings.Repeat("n", 200)})),
			wantErr: "This may not be a valid DOCX file.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.doc)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
			appErr, _ := apperrors.As(err)
			assert.Contains(t, appErr.Message, tt.wantErr)
		})
	}
}

func TestValidator_OversizedUploadCitesLimit(t *testing.T) {
	v := NewValidator(NewMockLogger())
	doc := domain.NewUploadedDocument("huge.pdf", domain.MediaTypePDF, fakePDF(4096))
	doc.Size = 60 * 1024 * 1024

	err := v.Validate(doc)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "File too large: 60.00MB. Maximum size is 50MB.", appErr.Message)
}

func TestValidator_SizeBoundaries(t *testing.T) {
	v := NewValidator(NewMockLogger(), WithSizeLimits(100, 1000), WithSignatureSniffing(false))

	assert.NoError(t, v.Validate(domain.NewUploadedDocument("a.pdf", domain.MediaTypePDF, fakePDF(100))))
	assert.NoError(t, v.Validate(domain.NewUploadedDocument("a.pdf", domain.MediaTypePDF, fakePDF(1000))))
	assert.Error(t, v.Validate(domain.NewUploadedDocument("a.pdf", domain.MediaTypePDF, fakePDF(1001))))
}

func TestValidator_SniffingDisabled(t *testing.T) {
	v := NewValidator(NewMockLogger(), WithSignatureSniffing(false))
	doc := domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, bytes.Repeat([]byte("x"), 2048))
	assert.NoError(t, v.Validate(doc))
}

func TestValidator_StructureCheck(t *testing.T) {
	calls := 0
	v := NewValidator(NewMockLogger(), WithStructureCheck(func(data []byte) error {
		calls++
		return errors.New("xref table broken")
	}))

	err := v.Validate(domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, fakePDF(2048)))
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	// DOCX uploads skip the PDF structure check.
	assert.NoError(t, v.Validate(domain.NewUploadedDocument("report.docx", domain.MediaTypeDOCX, fakeDOCX(t))))
	assert.Equal(t, 1, calls)
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\deck.docx`: "deck.docx",
		"...hidden.pdf":         "hidden.pdf",
		"we<ir>d:na|me?.pdf":    "weirdname.pdf",
		"tab\tname.pdf":         "tabname.pdf",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFileName(in), in)
	}
	assert.Len(t, []rune(SanitizeFileName(strings.Repeat("a", 400)+".pdf")), 255)
}
