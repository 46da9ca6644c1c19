package api

import (
	"encoding/json"
	"net/http"

	"github.com/rflorenc/conversion-host-service/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeResult emits the uniform action envelope used by submission endpoints.
func writeResult(w http.ResponseWriter, status int, result models.ActionResult) {
	writeJSON(w, status, result)
}
