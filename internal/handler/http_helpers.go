package handler

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"pdf-slide-synth/internal/domain"
	apperrors "pdf-slide-synth/pkg/errors"
)

type contextKey string

const userScopeContextKey contextKey = "user_scope"

// WithUserID stores the caller's scope key on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userScopeContextKey, userID)
}

// GetUserIDFromContext extracts the scope key set by UserScope.
func GetUserIDFromContext(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(userScopeContextKey).(string)
	return userID, ok && userID != ""
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeAppError maps err onto its status code and user-facing message. The
// cause is logged, never written to the client.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error) {
	status := apperrors.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "status", status)
	} else {
		logger.Debug("Request rejected", "status", status, "error", err.Error())
	}
	writeError(w, status, apperrors.UserMessage(err))
}

// writeFile streams a rendered file as an attachment.
func writeFile(w http.ResponseWriter, file *domain.RenderedFile) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
