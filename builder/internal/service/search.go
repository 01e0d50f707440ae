package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/executor"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
)

// SearchRequest runs either structured conditions or free text.
type SearchRequest struct {
	Query      string            `json:"query,omitempty"`
	Conditions []query.Condition `json:"conditions,omitempty"`
	TimeRange  string            `json:"time_range,omitempty"`
	Limit      int               `json:"limit,omitempty"`
}

// SearchResult holds the executed query and the records it matched.
type SearchResult struct {
	Query   string            `json:"query"`
	Records []executor.Record `json:"records"`
	Count   int               `json:"count"`
	TookMs  int64             `json:"took_ms"`
}

// Search executes a request. Conditions take precedence over Query and must
// all be valid; free text is passed through untouched.
func (s *QueryService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if s.executor == nil {
		return nil, ErrExecutorUnavailable
	}
	if !executor.ValidTimeRange(req.TimeRange) {
		return nil, validationError("time_range must be one of %s", strings.Join(executor.TimeRangeHints, ", "))
	}
	if req.Limit < 0 {
		return nil, validationError("limit must not be negative")
	}

	q := req.Query
	opts := executor.Options{TimeRangeHint: req.TimeRange, ResultLimit: req.Limit}
	if len(req.Conditions) > 0 {
		compiled, valid, err := s.compileStrict(req.Conditions)
		if err != nil {
			return nil, err
		}
		q = compiled
		opts.Conditions = valid
	}

	start := time.Now()
	records, err := s.executor.Execute(ctx, q, opts)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchesTotal.WithLabelValues(metrics.StatusOf(err)).Inc()
	if err != nil {
		if errors.Is(err, executor.ErrInvalidTimeRange) {
			return nil, validationError("%v", err)
		}
		s.logger.ErrorContext(ctx, "search failed", logging.Query(q), logging.Error(err))
		return nil, err
	}
	if records == nil {
		records = []executor.Record{}
	}

	took := time.Since(start)
	s.logger.InfoContext(ctx, "search executed",
		logging.Query(q),
		logging.Conditions(len(opts.Conditions)),
		logging.Duration(took))

	return &SearchResult{
		Query:   q,
		Records: records,
		Count:   len(records),
		TookMs:  took.Milliseconds(),
	}, nil
}
