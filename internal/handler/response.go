package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// WriteJSON writes data as a JSON response with the given status code.
// The Content-Type header is set before the status is written.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse is the standard error response format: a stable machine
// code plus a human-readable message.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// isJSONContentType reports whether the request declares a JSON body.
// A charset suffix ("application/json; charset=utf-8") is accepted.
func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct != "" && strings.HasPrefix(ct, "application/json")
}

// ParseJSON decodes the request body as JSON into v. Unknown fields,
// malformed bodies, and non-JSON content types are all rejected with the
// same error so clients get one message for every body problem.
func ParseJSON(r *http.Request, v any) error {
	if !isJSONContentType(r) {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	return nil
}
