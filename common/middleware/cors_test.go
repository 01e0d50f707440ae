package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	tests := []struct {
		name           string
		config         CORSConfig
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
		expectedMaxAge string
		expectCreds    bool
	}{
		{
			name: "exact origin match",
			config: CORSConfig{
				AllowedOrigins:   []string{"https://soc.example.com"},
				AllowedMethods:   []string{"GET", "POST"},
				AllowedHeaders:   []string{"Content-Type"},
				AllowCredentials: true,
				MaxAge:           600,
			},
			origin:         "https://soc.example.com",
			method:         http.MethodGet,
			expectedOrigin: "https://soc.example.com",
			expectedStatus: http.StatusOK,
			expectedMaxAge: "600",
			expectCreds:    true,
		},
		{
			name:           "wildcard subdomain match",
			config:         CORSConfig{AllowedOrigins: []string{"*.example.com"}},
			origin:         "https://app.example.com",
			method:         http.MethodGet,
			expectedOrigin: "https://app.example.com",
			expectedStatus: http.StatusOK,
			expectedMaxAge: "300",
		},
		{
			name:           "wildcard subdomain does not match apex",
			config:         CORSConfig{AllowedOrigins: []string{"*.example.com"}},
			origin:         "https://example.com",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedMaxAge: "300",
		},
		{
			name:           "star allows any origin",
			config:         CORSConfig{AllowedOrigins: []string{"*"}},
			origin:         "http://localhost:5173",
			method:         http.MethodGet,
			expectedOrigin: "http://localhost:5173",
			expectedStatus: http.StatusOK,
			expectedMaxAge: "300",
		},
		{
			name:           "preflight short-circuits",
			config:         DefaultCORSConfig([]string{"https://soc.example.com"}),
			origin:         "https://soc.example.com",
			method:         http.MethodOptions,
			expectedOrigin: "https://soc.example.com",
			expectedStatus: http.StatusNoContent,
			expectedMaxAge: "300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/compile", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORS(tt.config)(handler).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.expectedOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.expectedOrigin)
			}
			if got := w.Header().Get("Access-Control-Max-Age"); got != tt.expectedMaxAge {
				t.Errorf("Max-Age = %q, want %q", got, tt.expectedMaxAge)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.expectCreds {
				t.Errorf("Allow-Credentials = %v, want %v", got, tt.expectCreds)
			}
		})
	}
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig(nil)
	w := httptest.NewRecorder()
	CORS(cfg)(http.NotFoundHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, DELETE, OPTIONS" {
		t.Errorf("Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Request-ID" {
		t.Errorf("Allow-Headers = %q", got)
	}
}
