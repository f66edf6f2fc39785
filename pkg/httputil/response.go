// Package httputil provides small helpers for JSON HTTP responses.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteOK writes a 200 OK JSON response.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteError writes a JSON error response with a code and message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}
