package handler

import (
	"net/http"
	"regexp"
	"strings"

	"pdf-slide-synth/internal/domain"
)

const (
	UserIDHeader    = "X-User-ID"
	AnonymousUserID = "anonymous"
)

var validUserID = regexp.MustCompile(`^[A-Za-z0-9._@-]{1,128}$`)

// UserScope reads the caller's scope key from X-User-ID. The key only
// partitions job history and rate limits; it is not authentication.
func UserScope(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				userID = AnonymousUserID
			}
			if !validUserID.MatchString(userID) {
				logger.Warn("Rejected malformed user scope", "path", r.URL.Path)
				writeError(w, http.StatusBadRequest, "Invalid "+UserIDHeader+" header")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
