package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedResource(id, name string, version int) map[string]interface{} {
	return map[string]interface{}{
		"type": "saved_query",
		"id":   id,
		"attributes": map[string]interface{}{
			"id":             id,
			"name":           name,
			"compiled_query": `severity = "high"`,
			"raw_conditions": []interface{}{},
			"timestamp":      "2024-11-20T10:00:00Z",
			"version":        version,
		},
		"links": map[string]string{"self": "/api/v1/saved-queries/" + id},
	}
}

func TestSaveQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/saved-queries", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "High severity", req.Name)
		assert.Equal(t, `severity = "high"`, req.Query)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": savedResource("q-1", req.Name, 1)})
	}))
	defer server.Close()

	c := NewBuilderClient(server.URL + "/")
	saved, err := c.SaveQuery(context.Background(), SaveRequest{Name: "High severity", Query: `severity = "high"`})

	require.NoError(t, err)
	assert.Equal(t, "q-1", saved.ID)
	assert.Equal(t, 1, saved.Version)
	assert.Equal(t, 2024, saved.Timestamp.Year())
}

func TestListSavedQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{savedResource("b", "second", 2), savedResource("a", "first", 1)},
			"meta": map[string]interface{}{"pagination": map[string]int{"page": 2, "limit": 10, "total": 12}},
		})
	}))
	defer server.Close()

	items, err := NewBuilderClient(server.URL).ListSavedQueries(context.Background(), 2, 10)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "first", items[1].Name)
}

func TestGetAndDeleteSavedQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/saved-queries/q-1":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": savedResource("q-1", "n", 3)})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/saved-queries/q-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": []map[string]interface{}{{
				"status": 404, "code": "not_found", "title": "Resource Not Found",
				"detail": "The requested saved_query with ID 'gone' was not found",
			}}})
		}
	}))
	defer server.Close()
	c := NewBuilderClient(server.URL)
	ctx := context.Background()

	q, err := c.GetSavedQuery(ctx, "q-1")
	require.NoError(t, err)
	assert.Equal(t, 3, q.Version)

	require.NoError(t, c.DeleteSavedQuery(ctx, "q-1"))

	_, err = c.GetSavedQuery(ctx, "gone")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "saved_query with ID 'gone'")
}

func TestAPIErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewBuilderClient(server.URL).DeleteSavedQuery(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "request failed: 502 Bad Gateway", err.Error())
}
