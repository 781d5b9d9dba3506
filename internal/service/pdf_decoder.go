package service

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"pdf-slide-synth/internal/domain"

	"github.com/gen2brain/go-fitz"
	rscpdf "rsc.io/pdf"
)

// Supported PDF decoder backends.
const (
	PDFDecoderFitz = "fitz"
	PDFDecoderRSC  = "rsc"
)

// NewPageDecoder returns the decoder registered under name. Unknown names
// fall back to the MuPDF-backed decoder.
func NewPageDecoder(name string) domain.PageDecoder {
	if strings.EqualFold(name, PDFDecoderRSC) {
		return RSCDecoder{}
	}
	return FitzDecoder{}
}

// FitzDecoder decodes PDFs with MuPDF through go-fitz.
type FitzDecoder struct{}

// Open loads a PDF from memory.
func (FitzDecoder) Open(data []byte) (domain.PDFDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPage() int { return d.doc.NumPage() }

func (d *fitzDocument) PageText(index int) (string, error) {
	text, err := d.doc.Text(index)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}

func (d *fitzDocument) Close() error { return d.doc.Close() }

// RSCDecoder decodes PDFs with the pure-Go rsc.io/pdf reader.
type RSCDecoder struct{}

// Open loads a PDF from memory.
func (RSCDecoder) Open(data []byte) (doc domain.PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to open PDF: %v", r)
		}
	}()
	reader, err := rscpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &rscDocument{reader: reader}, nil
}

type rscDocument struct {
	reader *rscpdf.Reader
}

func (d *rscDocument) NumPage() int { return d.reader.NumPage() }

func (d *rscDocument) PageText(index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page %d: %v", index+1, r)
		}
	}()
	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d not found", index+1)
	}
	return joinTextRuns(page.Content().Text), nil
}

func (d *rscDocument) Close() error { return nil }

// joinTextRuns concatenates positioned runs in content order, inserting a
// single space wherever the pen jumps horizontally or changes line.
func joinTextRuns(runs []rscpdf.Text) string {
	var sb strings.Builder
	for i, run := range runs {
		if i > 0 {
			prev := runs[i-1]
			size := math.Max(prev.FontSize, 1)
			gap := run.X - (prev.X + prev.W)
			if math.Abs(run.Y-prev.Y) > size*0.5 || gap > size*0.15 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(run.S)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
