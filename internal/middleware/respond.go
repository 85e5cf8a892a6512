package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError sends the API's error envelope. It mirrors handlers.JSONError,
// which this package cannot import.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
