// Package executor runs compiled queries against an event store.
package executor

import (
	"context"
	"errors"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
)

// ErrInvalidTimeRange is returned for a time range hint outside TimeRangeHints.
var ErrInvalidTimeRange = errors.New("invalid time range hint")

// TimeRangeHints are the relative windows accepted in Options.TimeRangeHint.
var TimeRangeHints = []string{"15m", "1h", "24h", "7d"}

// Record is one matching event as returned by the store.
type Record map[string]any

// Options tune a single execution.
type Options struct {
	// TimeRangeHint restricts results to the trailing window, e.g. "24h".
	// Empty means no restriction.
	TimeRangeHint string `json:"time_range,omitempty"`

	// ResultLimit of zero uses the executor default. Values above the
	// executor maximum are capped.
	ResultLimit int `json:"limit,omitempty"`

	// Conditions, when set, are translated natively instead of passing the
	// query text through.
	Conditions []query.Condition `json:"conditions,omitempty"`
}

// Executor runs a query. Failures are returned to the caller, never retried.
type Executor interface {
	Execute(ctx context.Context, q string, opts Options) ([]Record, error)
}

// ValidTimeRange reports whether hint is empty or one of TimeRangeHints.
func ValidTimeRange(hint string) bool {
	if hint == "" {
		return true
	}
	for _, h := range TimeRangeHints {
		if h == hint {
			return true
		}
	}
	return false
}
