// Package repository persists saved queries.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
)

var ErrSavedQueryNotFound = errors.New("saved query not found")

// SavedQuery is a named compiled query together with the conditions it was
// built from.
type SavedQuery struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	CompiledQuery string            `json:"compiled_query"`
	RawConditions []query.Condition `json:"raw_conditions"`
	Timestamp     time.Time         `json:"timestamp"`
	// Version counts saves of the same id, starting at 1.
	Version int `json:"version"`
}

// Store persists saved queries. Saving an existing id creates a new version.
type Store interface {
	// Save assigns ID (when empty), Timestamp and Version on q.
	Save(ctx context.Context, q *SavedQuery) error
	// List returns current versions, newest first.
	List(ctx context.Context) ([]SavedQuery, error)
	Get(ctx context.Context, id string) (*SavedQuery, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func cloneConditions(conds []query.Condition) []query.Condition {
	if conds == nil {
		return []query.Condition{}
	}
	out := make([]query.Condition, len(conds))
	copy(out, conds)
	return out
}
