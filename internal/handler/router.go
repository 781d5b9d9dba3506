package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://localhost:4173", // Vite preview
	"http://localhost:3000", // Alternative dev port
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(
	conversionHandler *ConversionHandler,
	jobHandler *JobHandler,
	userScope func(http.Handler) http.Handler,
	allowedOrigins []string,
) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no user scope required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"slide-synth"}`))
	}).Methods("GET")

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(userScope)

	api.HandleFunc("/conversions", conversionHandler.Convert).Methods("POST")
	api.HandleFunc("/limits/{action}", conversionHandler.Limits).Methods("GET")

	api.HandleFunc("/jobs", jobHandler.ListJobs).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobHandler.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", jobHandler.DeleteJob).Methods("DELETE")
	api.HandleFunc("/jobs/{id}/archive", jobHandler.ArchiveJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/export", conversionHandler.Export).Methods("GET")
	api.HandleFunc("/archive", jobHandler.ListArchive).Methods("GET")

	if len(allowedOrigins) == 0 {
		allowedOrigins = defaultAllowedOrigins
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			UserIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
