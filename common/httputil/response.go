package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Content types written by this package.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeJSONAPI = "application/vnd.api+json"
)

// WriteJSON writes a JSON response with the given status code and data.
// Encoding errors are logged; the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, ContentTypeJSON, status, data)
}

// WriteJSONAPI writes a JSON:API compliant response.
func WriteJSONAPI(w http.ResponseWriter, status int, data interface{}) {
	write(w, ContentTypeJSONAPI, status, data)
}

func write(w http.ResponseWriter, contentType string, status int, data interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if status == http.StatusNoContent {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("content_type", contentType), slog.String("error", err.Error()))
	}
}

// WriteError writes a plain JSON error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteJSONAPIError writes an errors document holding a single error.
func WriteJSONAPIError(w http.ResponseWriter, status int, code, title, detail string) {
	WriteJSONAPI(w, status, map[string][]JSONAPIErrorObject{
		"errors": {{Status: status, Code: code, Title: title, Detail: detail}},
	})
}
