package service

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPUStructureCheck validates the PDF object graph with pdfcpu in relaxed mode.
func PDFCPUStructureCheck(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("pdfcpu validate: %w", err)
	}
	return nil
}
