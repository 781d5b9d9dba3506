package handler

import (
	"net/http"

	"pdf-slide-synth/internal/domain"

	"github.com/gorilla/mux"
)

// JobHandler serves a user's conversion history.
type JobHandler struct {
	service domain.ConversionService
	logger  domain.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(service domain.ConversionService, logger domain.Logger) *JobHandler {
	return &JobHandler{service: service, logger: logger}
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "User scope required")
		return
	}
	jobs, err := h.service.ListJobs(r.Context(), userID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	// Ensure JSON is [] not null when there are no jobs.
	if jobs == nil {
		jobs = []domain.ConversionJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "User scope required")
		return
	}
	jobs, err := h.service.ListArchive(r.Context(), userID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if jobs == nil {
		jobs = []domain.ConversionJob{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := h.scope(w, r)
	if !ok {
		return
	}
	job, err := h.service.GetJob(r.Context(), userID, jobID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) ArchiveJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.service.ArchiveJob(r.Context(), userID, jobID); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job archived successfully"})
}

func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, jobID, ok := h.scope(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteJob(r.Context(), userID, jobID); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}

func (h *JobHandler) scope(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID, ok := GetUserIDFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "User scope required")
		return "", "", false
	}
	jobID := mux.Vars(r)["id"]
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "Job ID is required")
		return "", "", false
	}
	return userID, jobID, true
}
