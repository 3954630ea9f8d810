package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"reeltrack/handlers"
	"reeltrack/services/sessions"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register mounts all endpoints onto the provided router.
func Register(
	r *mux.Router,
	authHandler *handlers.AuthHandler,
	libraryHandler *handlers.LibraryHandler,
	catalogHandler *handlers.CatalogHandler,
	imageHandler *handlers.ImageHandler,
	sessionsSvc *sessions.Service,
) {
	r.Use(corsMiddleware)

	// Auth routes (no session required)
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/signup", authHandler.Options).Methods(http.MethodOptions)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Options).Methods(http.MethodOptions)

	// /auth/me needs the session identity
	me := r.PathPrefix("/auth/me").Subrouter()
	me.Use(SessionAuthMiddleware(sessionsSvc))
	me.HandleFunc("", authHandler.Me).Methods(http.MethodGet)
	me.HandleFunc("", authHandler.Options).Methods(http.MethodOptions)

	api := r.PathPrefix("/api").Subrouter()

	// Public catalog routes - the proxy exists so the browser never sees
	// the catalog API key
	api.HandleFunc("/catalog/search", catalogHandler.Search).Methods(http.MethodGet)
	api.HandleFunc("/catalog/search", catalogHandler.Options).Methods(http.MethodOptions)
	api.HandleFunc("/images/proxy", imageHandler.Proxy).Methods(http.MethodGet)
	api.HandleFunc("/images/proxy", imageHandler.Options).Methods(http.MethodOptions)

	// Version endpoint (public)
	versionHandler := handlers.NewVersionHandler()
	api.HandleFunc("/version", versionHandler.GetVersion).Methods(http.MethodGet, http.MethodOptions)

	// Protected routes - require a valid session
	protected := api.PathPrefix("").Subrouter()
	protected.Use(SessionAuthMiddleware(sessionsSvc))

	protected.HandleFunc("/movies/add", libraryHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/movies/add", libraryHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/movies/update/{id}", libraryHandler.UpdateStatus).Methods(http.MethodPut)
	protected.HandleFunc("/movies/update/{id}", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/movies/delete/{id}", libraryHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/movies/delete/{id}", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/movies/{userID}", libraryHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/movies/{userID}", handleOptions).Methods(http.MethodOptions)

	protected.HandleFunc("/recommendations", catalogHandler.Recommendations).Methods(http.MethodGet)
	protected.HandleFunc("/recommendations", catalogHandler.Options).Methods(http.MethodOptions)
}
