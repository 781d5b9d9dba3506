package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"
)

const (
	defaultPageTimeout = 90 * time.Second
	yieldEveryPages    = 2

	msgNoPages        = "PDF contains no pages"
	msgNoText         = "Document is empty or contains no extractable text. It may be image-based."
	msgDOCXUnreadable = "Failed to read the DOCX file. It might be corrupted or protected."
	msgPDFUnreadable  = "Failed to read the PDF file. It might be corrupted or protected."
)

// DocumentExtractor turns PDF and DOCX uploads into per-page text.
type DocumentExtractor struct {
	decoder     domain.PageDecoder
	pageTimeout time.Duration
	logger      domain.Logger
}

// NewExtractor creates an extractor over the given PDF decoder.
func NewExtractor(decoder domain.PageDecoder, pageTimeout time.Duration, logger domain.Logger) *DocumentExtractor {
	if pageTimeout <= 0 {
		pageTimeout = defaultPageTimeout
	}
	return &DocumentExtractor{
		decoder:     decoder,
		pageTimeout: pageTimeout,
		logger:      logger,
	}
}

// FailedPagePlaceholder is substituted for pages that cannot be decoded.
func FailedPagePlaceholder(pageNumber int) string {
	return fmt.Sprintf("[Page %d: Text extraction failed]", pageNumber)
}

// ExtractPages returns one entry per source page.
func (e *DocumentExtractor) ExtractPages(ctx context.Context, doc domain.UploadedDocument, progress domain.ProgressFunc) (*domain.ExtractionResult, error) {
	var pages []string
	var err error

	switch doc.Kind() {
	case domain.DocumentKindPDF:
		pages, err = e.extractPDF(ctx, doc, progress)
	case domain.DocumentKindDOCX:
		pages, err = e.extractDOCX(doc, progress)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unsupported document type: .%s", doc.Extension()))
	}
	if err != nil {
		return nil, err
	}

	if len(pages) == 0 {
		return nil, apperrors.NewExtractionError(msgNoPages, domain.ErrNoPages)
	}
	if strings.TrimSpace(strings.Join(pages, "")) == "" {
		return nil, apperrors.NewExtractionError(msgNoText, domain.ErrNoExtractableText)
	}

	e.logger.Info("Document text extracted", "file", doc.FileName, "pages", len(pages))
	return &domain.ExtractionResult{Pages: pages, PageCount: len(pages)}, nil
}

// ExtractAll returns the whole document as one string with pages separated
// by a blank line.
func (e *DocumentExtractor) ExtractAll(ctx context.Context, doc domain.UploadedDocument) (string, error) {
	result, err := e.ExtractPages(ctx, doc, nil)
	if err != nil {
		return "", err
	}
	return result.FullText(), nil
}

func (e *DocumentExtractor) extractPDF(ctx context.Context, doc domain.UploadedDocument, progress domain.ProgressFunc) ([]string, error) {
	pdf, err := e.decoder.Open(doc.Data)
	if err != nil {
		e.logger.Error("Failed to open PDF", err, "file", doc.FileName)
		return nil, apperrors.NewExtractionError(msgPDFUnreadable, err)
	}
	defer pdf.Close()

	numPages := pdf.NumPage()
	if numPages <= 0 {
		return nil, apperrors.NewExtractionError(msgNoPages, domain.ErrNoPages)
	}

	pages := make([]string, 0, numPages)
	for idx := 0; idx < numPages; idx++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.NewExtractionError("Extraction was cancelled", err)
		}

		e.logger.Debug("PDF processing page", "page", idx+1, "total", numPages)
		text, err := e.pageText(pdf, idx)
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "page_num", idx+1, "total", numPages, "error", err)
			text = FailedPagePlaceholder(idx + 1)
		}
		pages = append(pages, sanitizeText(text))

		if progress != nil {
			progress(idx+1, numPages)
		}
		if (idx+1)%yieldEveryPages == 0 {
			runtime.Gosched()
		}
	}
	return pages, nil
}

type pageResult struct {
	text string
	err  error
}

// pageText decodes one page under the per-page timeout. A decoder panic is
// reported as a page failure.
func (e *DocumentExtractor) pageText(pdf domain.PDFDocument, idx int) (string, error) {
	resultCh := make(chan pageResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- pageResult{err: fmt.Errorf("decoder panic: %v", r)}
			}
		}()
		t, err := pdf.PageText(idx)
		resultCh <- pageResult{text: t, err: err}
	}()

	timer := time.NewTimer(e.pageTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		return res.text, res.err
	case <-timer.C:
		return "", fmt.Errorf("%w after %v", domain.ErrTimeout, e.pageTimeout)
	}
}

func (e *DocumentExtractor) extractDOCX(doc domain.UploadedDocument, progress domain.ProgressFunc) ([]string, error) {
	text, err := extractDOCXText(doc.Data)
	if err != nil {
		e.logger.Error("Failed to read DOCX", err, "file", doc.FileName)
		return nil, apperrors.NewExtractionError(msgDOCXUnreadable, err)
	}
	if progress != nil {
		progress(1, 1)
	}
	return []string{sanitizeText(text)}, nil
}

// sanitizeText removes NULs, invalid UTF-8 and control characters other
// than newline and tab.
func sanitizeText(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\t':
			result.WriteRune(r)
		case r == '\r':
			result.WriteRune('\n')
		case r < 0x20 || r == 0x7F:
			continue
		case r >= 0xD800 && r <= 0xDFFF:
			continue
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
