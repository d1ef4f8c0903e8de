package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(sessionHandler *SessionHandler, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-unlocker"}`))
	}).Methods("GET")

	// Session routes. /sessions/export is registered before /sessions/{id}
	// so "export" is not captured as an id.
	api.HandleFunc("/sessions/export", sessionHandler.ExportAll).Methods("GET")
	api.HandleFunc("/sessions", sessionHandler.UploadSessions).Methods("POST")
	api.HandleFunc("/sessions", sessionHandler.GetSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", sessionHandler.RemoveSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/password", sessionHandler.SubmitPassword).Methods("POST")
	api.HandleFunc("/sessions/{id}/download", sessionHandler.DownloadSession).Methods("GET")

	// The common password list the UI shows under "passwords we try".
	api.HandleFunc("/passwords", sessionHandler.GetPasswordDictionary).Methods("GET")

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
		},
		ExposedHeaders: []string{
			"Content-Disposition",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
