package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps saved queries in process. It is the default backend.
type MemoryStore struct {
	mu      sync.RWMutex
	queries map[string]SavedQuery
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		queries: make(map[string]SavedQuery),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, q *SavedQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == "" {
		q.ID = newID()
	}
	q.Version = s.queries[q.ID].Version + 1
	q.Timestamp = s.now().UTC()
	q.RawConditions = cloneConditions(q.RawConditions)

	stored := *q
	stored.RawConditions = cloneConditions(q.RawConditions)
	s.queries[q.ID] = stored
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]SavedQuery, error) {
	s.mu.RLock()
	out := make([]SavedQuery, 0, len(s.queries))
	for _, q := range s.queries {
		q.RawConditions = cloneConditions(q.RawConditions)
		out = append(out, q)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*SavedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queries[id]
	if !ok {
		return nil, ErrSavedQueryNotFound
	}
	q.RawConditions = cloneConditions(q.RawConditions)
	return &q, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.queries[id]; !ok {
		return ErrSavedQueryNotFound
	}
	delete(s.queries, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
