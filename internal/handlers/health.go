package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// Health reports that the process is serving. It does not touch the database.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":   true,
		"message":   "API is healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns 200 when the database answers a ping within two seconds, 503 otherwise.
func Ready(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		OK(w, nil, "ready")
	}
}
