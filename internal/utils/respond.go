package utils

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes payload with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError writes a structured error body carrying a machine-readable
// reason code so clients can branch without string matching.
func RespondError(w http.ResponseWriter, status int, reason, message string, data any) {
	body := map[string]any{
		"error":  message,
		"reason": reason,
	}
	if data != nil {
		body["data"] = data
	}
	RespondJSON(w, status, body)
}
