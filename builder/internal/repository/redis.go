package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/telhawk-querybuilder/common/database"
)

// RedisStore keeps the current version of each saved query as JSON in a hash
// keyed by id, with a sorted set ordering ids by save time.
type RedisStore struct {
	client *redis.Client
	hash   string
	order  string
	now    func() time.Time
}

// NewRedisStore connects to url and verifies the connection.
func NewRedisStore(ctx context.Context, url, keyPrefix string, poolSize int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, keyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "querybuilder"
	}
	return &RedisStore{
		client: client,
		hash:   keyPrefix + ":saved_queries",
		order:  keyPrefix + ":saved_queries:order",
		now:    time.Now,
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// maxSaveAttempts bounds optimistic retries when another writer touches the
// hash between reading the previous version and committing the next one.
const maxSaveAttempts = 32

func (s *RedisStore) Save(ctx context.Context, q *SavedQuery) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	if q.ID == "" {
		q.ID = newID()
	}
	q.RawConditions = cloneConditions(q.RawConditions)

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			return s.saveTx(ctx, tx, q)
		}, s.hash)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to save query %s: too many concurrent writers", q.ID)
}

// saveTx runs under WATCH on the hash, so the version it derives is only
// committed if no other write landed in between.
func (s *RedisStore) saveTx(ctx context.Context, tx *redis.Tx, q *SavedQuery) error {
	raw, err := tx.HGet(ctx, s.hash, q.ID).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		q.Version = 1
	case err != nil:
		return fmt.Errorf("failed to get saved query: %w", err)
	default:
		var prev SavedQuery
		if err := json.Unmarshal(raw, &prev); err != nil {
			return fmt.Errorf("failed to unmarshal saved query: %w", err)
		}
		q.Version = prev.Version + 1
	}
	q.Timestamp = s.now().UTC()

	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal saved query: %w", err)
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.hash, q.ID, data)
		pipe.ZAdd(ctx, s.order, redis.Z{Score: float64(q.Timestamp.UnixNano()), Member: q.ID})
		return nil
	})
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("failed to save query: %w", err)
	}
	return err
}

func (s *RedisStore) List(ctx context.Context) ([]SavedQuery, error) {
	ctx, cancel := database.ReadContext(ctx)
	defer cancel()

	ids, err := s.client.ZRevRange(ctx, s.order, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	out := make([]SavedQuery, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := s.client.HMGet(ctx, s.hash, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load saved queries: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// order entry without a hash entry; skipped until the next save or delete
			continue
		}
		var q SavedQuery
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal saved query: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*SavedQuery, error) {
	ctx, cancel := database.ReadContext(ctx)
	defer cancel()

	raw, err := s.client.HGet(ctx, s.hash, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSavedQueryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved query: %w", err)
	}
	var q SavedQuery
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saved query: %w", err)
	}
	return &q, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	pipe := s.client.TxPipeline()
	removed := pipe.HDel(ctx, s.hash, id)
	pipe.ZRem(ctx, s.order, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete saved query: %w", err)
	}
	if removed.Val() == 0 {
		return ErrSavedQueryNotFound
	}
	return nil
}
