package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockPageDecoder serves canned page texts. A nil entry in failures means
// the page decodes; a non-nil entry is returned as the page error.
type MockPageDecoder struct {
	pages    []string
	failures map[int]error
	panicOn  map[int]bool
	block    map[int]time.Duration
	openErr  error
	closed   bool
}

func (m *MockPageDecoder) Open(data []byte) (domain.PDFDocument, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m, nil
}

func (m *MockPageDecoder) NumPage() int { return len(m.pages) }

func (m *MockPageDecoder) PageText(index int) (string, error) {
	if m.panicOn[index] {
		panic("corrupt content stream")
	}
	if d, ok := m.block[index]; ok {
		time.Sleep(d)
	}
	if err := m.failures[index]; err != nil {
		return "", err
	}
	return m.pages[index], nil
}

func (m *MockPageDecoder) Close() error {
	m.closed = true
	return nil
}

func pdfUpload() domain.UploadedDocument {
	return domain.NewUploadedDocument("report.pdf", domain.MediaTypePDF, fakePDF(512))
}

func TestExtractor_ExtractPages_PDF(t *testing.T) {
	decoder := &MockPageDecoder{pages: []string{"First page text.", "Second\x00 page\r\ntext."}}
	ext := NewExtractor(decoder, time.Second, NewMockLogger())

	var progress [][2]int
	result, err := ext.ExtractPages(context.Background(), pdfUpload(), func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, []string{"First page text.", "Second page\ntext."}, result.Pages)
	assert.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)
	assert.True(t, decoder.closed)
}

func TestExtractor_PageFailuresBecomePlaceholders(t *testing.T) {
	decoder := &MockPageDecoder{
		pages:    []string{"Readable page one.", "", "", "Readable page four."},
		failures: map[int]error{1: errors.New("bad stream")},
		panicOn:  map[int]bool{2: true},
	}
	ext := NewExtractor(decoder, time.Second, NewMockLogger())

	result, err := ext.ExtractPages(context.Background(), pdfUpload(), nil)
	require.NoError(t, err)

	require.Len(t, result.Pages, decoder.NumPage())
	assert.Equal(t, "[Page 2: Text extraction failed]", result.Pages[1])
	assert.Equal(t, "[Page 3: Text extraction failed]", result.Pages[2])
	assert.Equal(t, "Readable page four.", result.Pages[3])
}

func TestExtractor_PageTimeout(t *testing.T) {
	decoder := &MockPageDecoder{
		pages: []string{"slow page", "fast page"},
		block: map[int]time.Duration{0: 200 * time.Millisecond},
	}
	ext := NewExtractor(decoder, 20*time.Millisecond, NewMockLogger())

	result, err := ext.ExtractPages(context.Background(), pdfUpload(), nil)
	require.NoError(t, err)
	assert.Equal(t, FailedPagePlaceholder(1), result.Pages[0])
	assert.Equal(t, "fast page", result.Pages[1])
}

func TestExtractor_EmptyAndImageOnlyPDF(t *testing.T) {
	t.Run("no pages", func(t *testing.T) {
		ext := NewExtractor(&MockPageDecoder{}, time.Second, NewMockLogger())
		_, err := ext.ExtractPages(context.Background(), pdfUpload(), nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExtraction))
		assert.ErrorIs(t, err, domain.ErrNoPages)
	})

	t.Run("only whitespace", func(t *testing.T) {
		ext := NewExtractor(&MockPageDecoder{pages: []string{"", "   ", "\n"}}, time.Second, NewMockLogger())
		_, err := ext.ExtractPages(context.Background(), pdfUpload(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNoExtractableText)
		appErr, _ := apperrors.As(err)
		assert.Contains(t, appErr.Message, "empty or contains no extractable text")

		_, err = ext.ExtractAll(context.Background(), pdfUpload())
		assert.ErrorIs(t, err, domain.ErrNoExtractableText)
	})

	t.Run("open failure", func(t *testing.T) {
		ext := NewExtractor(&MockPageDecoder{openErr: errors.New("not a pdf")}, time.Second, NewMockLogger())
		_, err := ext.ExtractPages(context.Background(), pdfUpload(), nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExtraction))
	})
}

func TestExtractor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ext := NewExtractor(&MockPageDecoder{pages: []string{"text"}}, time.Second, NewMockLogger())

	_, err := ext.ExtractPages(ctx, pdfUpload(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractor_ExtractAll(t *testing.T) {
	ext := NewExtractor(&MockPageDecoder{pages: []string{"one", "two", "three"}}, time.Second, NewMockLogger())
	text, err := ext.ExtractAll(context.Background(), pdfUpload())
	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo\n\nthree", text)
}

func TestExtractor_DOCX(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Quarterly results</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Revenue grew </w:t></w:r><w:r><w:t>20%.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t><w:br/><w:t>Next line</w:t></w:r></w:p>
  </w:body>
</w:document>`
	doc := domain.NewUploadedDocument("notes.docx", domain.MediaTypeDOCX, buildDOCX(t, body))
	ext := NewExtractor(&MockPageDecoder{}, time.Second, NewMockLogger())

	result, err := ext.ExtractPages(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.PageCount)
	assert.Equal(t, "Quarterly results\nRevenue grew 20%.\nCol A\tCol B\nNext line", result.Pages[0])
}

func TestExtractor_DOCXUnreadable(t *testing.T) {
	ext := NewExtractor(&MockPageDecoder{}, time.Second, NewMockLogger())

	doc := domain.NewUploadedDocument("broken.docx", domain.MediaTypeDOCX, []byte(strings.Repeat("PK", 100)))
	_, err := ext.ExtractPages(context.Background(), doc, nil)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, msgDOCXUnreadable, appErr.Message)

	missingBody := domain.NewUploadedDocument("empty.docx", domain.MediaTypeDOCX, buildZip(t, map[string]string{"[Content_Types].xml": "<Types/>"}))
	_, err = ext.ExtractPages(context.Background(), missingBody, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExtraction))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeText("a\tb\r\nc"))
	assert.Equal(t, "abc", sanitizeText("a\x00b\x07c"))
	assert.Equal(t, "ok", sanitizeText("o\xffk"))
}
