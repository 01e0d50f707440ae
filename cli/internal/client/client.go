// Package client talks to the query builder HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
)

// SavedQuery mirrors the saved query resource attributes.
type SavedQuery struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	CompiledQuery string            `json:"compiled_query"`
	RawConditions []query.Condition `json:"raw_conditions"`
	Timestamp     time.Time         `json:"timestamp"`
	Version       int               `json:"version"`
}

// SaveRequest creates a saved query, or a new version when ID is set.
type SaveRequest struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Query      string            `json:"query,omitempty"`
	Conditions []query.Condition `json:"conditions,omitempty"`
}

type jsonAPIResource struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Attributes SavedQuery `json:"attributes"`
}

type jsonAPIError struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("request failed: %d: %s", e.StatusCode, e.Detail)
}

// BuilderClient is a client for the saved query endpoints.
type BuilderClient struct {
	baseURL string
	client  *http.Client
}

func NewBuilderClient(baseURL string) *BuilderClient {
	return &BuilderClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ListSavedQueries fetches one page; page and limit of zero use server defaults.
func (c *BuilderClient) ListSavedQueries(ctx context.Context, page, limit int) ([]SavedQuery, error) {
	u, err := url.Parse(c.baseURL + "/api/v1/saved-queries")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	u.RawQuery = q.Encode()

	var out struct {
		Data []jsonAPIResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, u.String(), nil, &out); err != nil {
		return nil, err
	}
	items := make([]SavedQuery, 0, len(out.Data))
	for _, r := range out.Data {
		items = append(items, fromResource(r))
	}
	return items, nil
}

func (c *BuilderClient) SaveQuery(ctx context.Context, req SaveRequest) (*SavedQuery, error) {
	var out struct {
		Data jsonAPIResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/v1/saved-queries", req, &out); err != nil {
		return nil, err
	}
	q := fromResource(out.Data)
	return &q, nil
}

func (c *BuilderClient) GetSavedQuery(ctx context.Context, id string) (*SavedQuery, error) {
	var out struct {
		Data jsonAPIResource `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/v1/saved-queries/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	q := fromResource(out.Data)
	return &q, nil
}

func (c *BuilderClient) DeleteSavedQuery(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.baseURL+"/api/v1/saved-queries/"+url.PathEscape(id), nil, nil)
}

func (c *BuilderClient) do(ctx context.Context, method, target string, body, out interface{}) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Errors []jsonAPIError `json:"errors"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && len(errBody.Errors) > 0 {
			apiErr.Detail = errBody.Errors[0].Detail
			if apiErr.Detail == "" {
				apiErr.Detail = errBody.Errors[0].Title
			}
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func fromResource(r jsonAPIResource) SavedQuery {
	q := r.Attributes
	if q.ID == "" {
		q.ID = r.ID
	}
	return q
}
