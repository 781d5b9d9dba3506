// Package handler provides HTTP handlers for the API.
package handler

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"

	"github.com/gorilla/mux"
)

const (
	uploadFormField     = "file"
	multipartOverhead   = 1 << 20
	multipartMemory     = 32 << 20
	exportAllVariants   = "all"
	bundleContentType   = "application/zip"
	defaultMaxUploadLen = 50 << 20
)

// ConversionHandler handles uploads, exports and quota lookups.
type ConversionHandler struct {
	service       domain.ConversionService
	maxUploadSize int64
	logger        domain.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service domain.ConversionService, maxUploadSize int64, logger domain.Logger) *ConversionHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadLen
	}
	return &ConversionHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Convert accepts a multipart upload and runs the full pipeline.
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "User scope required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxUploadSize/1024/1024))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", err, "file", header.Filename)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	doc := domain.NewUploadedDocument(header.Filename, header.Header.Get("Content-Type"), data)
	job, err := h.service.Convert(r.Context(), userID, doc, domain.ConvertHooks{})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

// Export streams one variant, or every variant zipped when variant=all.
func (h *ConversionHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "User scope required")
		return
	}
	jobID := mux.Vars(r)["id"]
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	format, err := domain.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	variantID := r.URL.Query().Get("variant")
	if variantID != exportAllVariants {
		file, err := h.service.Export(r.Context(), userID, jobID, variantID, format)
		if err != nil {
			writeAppError(w, h.logger, err)
			return
		}
		writeFile(w, file)
		return
	}

	files, err := h.service.ExportAll(r.Context(), userID, jobID, format)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	bundle, err := bundleFiles(files)
	if err != nil {
		writeAppError(w, h.logger, apperrors.NewRenderError("Failed to bundle presentations", err))
		return
	}
	writeFile(w, &domain.RenderedFile{
		FileName:    jobID + "_decks.zip",
		ContentType: bundleContentType,
		Data:        bundle,
	})
}

// Limits reports the caller's remaining quota for one action.
func (h *ConversionHandler) Limits(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "User scope required")
		return
	}
	action, err := domain.ParseActionKind(mux.Vars(r)["action"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown action")
		return
	}

	status, err := h.service.Limits(r.Context(), userID, action)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func bundleFiles(files []*domain.RenderedFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		entry, err := zw.Create(f.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
