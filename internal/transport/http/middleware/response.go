package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the same error shape as the handlers' MessageEnvelope.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg, "error_code": status})
}
