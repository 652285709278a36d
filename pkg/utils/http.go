package utils

import (
	"encoding/json"
	"net/http"
)

// JSONError writes the failure envelope with the given status code.
func JSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}

// JSONWrite writes the provided value as JSON with the given status code.
func JSONWrite(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	return json.NewEncoder(w).Encode(v)
}

// Envelope builds the success envelope with a named payload field.
func Envelope(field string, payload any) map[string]any {
	return map[string]any{"success": true, field: payload}
}
