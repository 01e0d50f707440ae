package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telhawk-systems/telhawk-querybuilder/common/database"
)

// PostgresStore keeps every saved version as its own row; the newest live row
// per id is current.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string, maxConns int32) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, q *SavedQuery) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	if q.ID == "" {
		q.ID = newID()
	}
	q.RawConditions = cloneConditions(q.RawConditions)
	conditions, err := json.Marshal(q.RawConditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	const stmt = `
		INSERT INTO saved_queries (version_id, id, name, compiled_query, raw_conditions, created_at)
		VALUES ($1, $2, $3, $4, $5, clock_timestamp())
		RETURNING created_at,
			(SELECT COUNT(*) FROM saved_queries WHERE id = $2 AND deleted_at IS NULL) + 1
	`
	var version int64
	err = s.pool.QueryRow(ctx, stmt, newID(), q.ID, q.Name, q.CompiledQuery, conditions).
		Scan(&q.Timestamp, &version)
	if err != nil {
		return fmt.Errorf("failed to save query: %w", err)
	}
	q.Version = int(version)
	return nil
}

// current selects the newest live version per id with its version number.
const current = `
	SELECT id::text, name, compiled_query, raw_conditions, created_at, version
	FROM (
		SELECT id, name, compiled_query, raw_conditions, created_at,
			ROW_NUMBER() OVER (PARTITION BY id ORDER BY created_at DESC) AS rn,
			COUNT(*) OVER (PARTITION BY id) AS version
		FROM saved_queries
		WHERE deleted_at IS NULL
	) v
	WHERE rn = 1
`

func (s *PostgresStore) List(ctx context.Context) ([]SavedQuery, error) {
	ctx, cancel := database.ReadContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, current+` ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved queries: %w", err)
	}
	defer rows.Close()

	out := make([]SavedQuery, 0)
	for rows.Next() {
		q, err := scanSavedQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate saved queries: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*SavedQuery, error) {
	ctx, cancel := database.ReadContext(ctx)
	defer cancel()

	q, err := scanSavedQuery(s.pool.QueryRow(ctx, current+` AND id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSavedQueryNotFound
	}
	return q, err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := database.WriteContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		`UPDATE saved_queries SET deleted_at = NOW() WHERE id::text = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSavedQueryNotFound
	}
	return nil
}

func scanSavedQuery(row pgx.Row) (*SavedQuery, error) {
	var q SavedQuery
	var conditions []byte
	var version int64
	if err := row.Scan(&q.ID, &q.Name, &q.CompiledQuery, &conditions, &q.Timestamp, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan saved query: %w", err)
	}
	if err := json.Unmarshal(conditions, &q.RawConditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}
	q.Version = int(version)
	q.Timestamp = q.Timestamp.UTC()
	return &q, nil
}
