package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/metrics"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/internal/repository"
	"github.com/telhawk-systems/telhawk-querybuilder/builder/pkg/query"
	"github.com/telhawk-systems/telhawk-querybuilder/common/logging"
	"github.com/telhawk-systems/telhawk-querybuilder/common/messaging"
)

// SaveRequest creates a saved query, or a new version when ID is set.
// When Conditions are given the stored query is compiled from them.
type SaveRequest struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	Query      string            `json:"query,omitempty"`
	Conditions []query.Condition `json:"conditions,omitempty"`
}

// SavedQueryEvent is published after a saved query changes.
type SavedQueryEvent struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Version   int       `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Saved query event actions.
const (
	ActionSaved   = "saved"
	ActionDeleted = "deleted"
)

func (s *QueryService) SaveQuery(ctx context.Context, req SaveRequest) (*repository.SavedQuery, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	compiled := strings.TrimSpace(req.Query)
	conds := req.Conditions
	if len(conds) > 0 {
		q, valid, err := s.compileStrict(conds)
		if err != nil {
			return nil, err
		}
		compiled, conds = q, valid
	}
	if compiled == "" {
		return nil, validationError("query or conditions are required")
	}

	if req.ID != "" {
		if _, err := s.store.Get(ctx, req.ID); err != nil {
			metrics.SavedQueryOpsTotal.WithLabelValues("save", metrics.StatusError).Inc()
			return nil, err
		}
	}

	sq := &repository.SavedQuery{
		ID:            req.ID,
		Name:          name,
		CompiledQuery: compiled,
		RawConditions: conds,
	}
	err := s.store.Save(ctx, sq)
	metrics.SavedQueryOpsTotal.WithLabelValues("save", metrics.StatusOf(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("save query: %w", err)
	}

	s.logger.InfoContext(ctx, "saved query stored", logging.SavedQueryID(sq.ID), logging.Query(sq.CompiledQuery))
	s.publish(ctx, SavedQueryEvent{Action: ActionSaved, ID: sq.ID, Name: sq.Name, Version: sq.Version, Timestamp: sq.Timestamp})
	return sq, nil
}

func (s *QueryService) ListSavedQueries(ctx context.Context) ([]repository.SavedQuery, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	list, err := s.store.List(ctx)
	metrics.SavedQueryOpsTotal.WithLabelValues("list", metrics.StatusOf(err)).Inc()
	return list, err
}

func (s *QueryService) GetSavedQuery(ctx context.Context, id string) (*repository.SavedQuery, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	q, err := s.store.Get(ctx, id)
	metrics.SavedQueryOpsTotal.WithLabelValues("get", metrics.StatusOf(err)).Inc()
	return q, err
}

func (s *QueryService) DeleteSavedQuery(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	err := s.store.Delete(ctx, id)
	metrics.SavedQueryOpsTotal.WithLabelValues("delete", metrics.StatusOf(err)).Inc()
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "saved query deleted", logging.SavedQueryID(id))
	s.publish(ctx, SavedQueryEvent{Action: ActionDeleted, ID: id, Timestamp: time.Now().UTC()})
	return nil
}

// publish emits ev when a publisher is configured. Failures are logged only.
func (s *QueryService) publish(ctx context.Context, ev SavedQueryEvent) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err == nil {
		err = s.events.Publish(ctx, messaging.SavedQueryEventSubject(ev.Action), data)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish saved query event",
			logging.SavedQueryID(ev.ID), logging.Error(err))
	}
}
