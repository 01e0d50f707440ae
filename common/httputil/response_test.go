package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name   string
		status int
		data   interface{}
	}{
		{name: "map", status: http.StatusOK, data: map[string]string{"query": `severity = "high"`}},
		{name: "struct", status: http.StatusCreated, data: struct{ ID string }{"123"}},
		{name: "slice", status: http.StatusOK, data: []string{"equals", "in"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteJSON(w, tt.status, tt.data)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != ContentTypeJSON {
				t.Errorf("Content-Type = %q", ct)
			}
			var out interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Errorf("body is not JSON: %v", err)
			}
		})
	}
}

func TestWriteJSONNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusNoContent, map[string]string{"ignored": "yes"})
	if w.Body.Len() != 0 {
		t.Errorf("204 must not carry a body, got %q", w.Body.String())
	}
}

func TestWriteJSONUnencodable(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]interface{}{"ch": make(chan int)})
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "bad input")

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "bad input" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestWriteJSONAPIError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONAPIError(w, http.StatusConflict, "conflict", "Conflict", "already exists")

	if ct := w.Header().Get("Content-Type"); ct != ContentTypeJSONAPI {
		t.Errorf("Content-Type = %q", ct)
	}
	var body struct {
		Errors []JSONAPIErrorObject `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Errors) != 1 || body.Errors[0].Code != "conflict" || body.Errors[0].Status != http.StatusConflict {
		t.Errorf("unexpected errors: %+v", body.Errors)
	}
}
