// Package httpx provides HTTP response utilities for the uniform API envelope.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape shared by every API endpoint.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Success sends a successful envelope with the given status code.
func Success(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Success: true, Data: data})
}

// Fail sends a failed envelope with the given status code and message.
func Fail(w http.ResponseWriter, status int, message string, details ...string) {
	write(w, status, Envelope{Success: false, Error: message, Details: details})
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
