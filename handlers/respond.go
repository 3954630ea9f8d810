package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[handlers] encode response: %v", err)
	}
}

// writeError reports failures as {"error": ...} JSON bodies, which is what
// the client surfaces to the user.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// logServerError records the internal detail that writeError deliberately
// keeps out of the response body.
func logServerError(r *http.Request, err error) {
	log.Printf("[handlers] %s %s: %v", r.Method, r.URL.Path, err)
}
