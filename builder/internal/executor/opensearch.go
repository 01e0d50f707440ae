package executor

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/telhawk-systems/telhawk-querybuilder/common/config"
	"github.com/telhawk-systems/telhawk-querybuilder/common/fields"
)

// OpenSearchExecutor runs queries against an OpenSearch index pattern.
type OpenSearchExecutor struct {
	client       *opensearch.Client
	index        string
	reg          *fields.Registry
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewOpenSearch creates an executor. It does not contact the cluster; call
// Ping to verify connectivity.
func NewOpenSearch(cfg config.OpenSearchConfig, limits config.ExecutorConfig, reg *fields.Registry) (*OpenSearchExecutor, error) {
	if reg == nil {
		reg = fields.Default()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Insecure, //nolint:gosec // development clusters use self-signed certs
		},
	}
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &OpenSearchExecutor{
		client:       client,
		index:        cfg.Index,
		reg:          reg,
		defaultLimit: limits.DefaultLimit,
		maxLimit:     limits.MaxLimit,
		logger:       slog.Default().With(slog.String("component", "opensearch-executor")),
	}, nil
}

// Ping checks that the cluster answers.
func (e *OpenSearchExecutor) Ping(ctx context.Context) error {
	res, err := e.client.Info(e.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("opensearch returned error: %s", res.Status())
	}
	return nil
}

// Limit applies the default and maximum to a requested result limit.
func (e *OpenSearchExecutor) Limit(requested int) int {
	switch {
	case requested <= 0:
		return e.defaultLimit
	case requested > e.maxLimit:
		return e.maxLimit
	default:
		return requested
	}
}

// Execute runs q, or opts.Conditions when present, and returns the matching
// event sources newest first.
func (e *OpenSearchExecutor) Execute(ctx context.Context, q string, opts Options) ([]Record, error) {
	limit := e.Limit(opts.ResultLimit)
	body, err := BuildSearchBody(e.reg, q, opts, limit)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Record `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := make([]Record, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		records = append(records, hit.Source)
	}

	e.logger.DebugContext(ctx, "search executed",
		slog.Int("returned", len(records)),
		slog.Int("total", result.Hits.Total.Value),
		slog.Int("limit", limit))
	return records, nil
}
