package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"goalwidget/internal/identity"
)

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
    id           TEXT PRIMARY KEY,
    settings     JSONB NOT NULL DEFAULT '{}'::jsonb,
    donations    JSONB NOT NULL DEFAULT '[]'::jsonb,
    last_updated BIGINT NOT NULL
)`

// PGStore persists sessions in Postgres for deployments where several
// sessiond replicas share one database.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore ensures the sessions table exists on the given pool. The
// pool stays owned by the caller.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	if _, err := pool.Exec(ctx, createSessionsTable); err != nil {
		return nil, fmt.Errorf("ensure sessions table: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Create(ctx context.Context, data Data) (string, Data, error) {
	id := identity.NewID()
	data.Normalize(time.Now())
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, settings, donations, last_updated) VALUES ($1, $2, $3, $4)`,
		id, []byte(data.Settings), []byte(data.Donations), data.LastUpdated)
	if err != nil {
		return "", Data{}, fmt.Errorf("insert session: %w", err)
	}
	return id, data, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (Data, error) {
	var data Data
	var settings, donations []byte
	err := s.pool.QueryRow(ctx,
		`SELECT settings, donations, last_updated FROM sessions WHERE id = $1`,
		id).Scan(&settings, &donations, &data.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Data{}, ErrNotFound
	}
	if err != nil {
		return Data{}, fmt.Errorf("select session: %w", err)
	}
	data.Settings = settings
	data.Donations = donations
	return data, nil
}

func (s *PGStore) Put(ctx context.Context, id string, data Data) (Data, error) {
	data.Normalize(time.Now())
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, settings, donations, last_updated) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET settings = $2, donations = $3, last_updated = $4`,
		id, []byte(data.Settings), []byte(data.Donations), data.LastUpdated)
	if err != nil {
		return Data{}, fmt.Errorf("upsert session: %w", err)
	}
	return data, nil
}

func (s *PGStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE last_updated < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close is a no-op; the pool belongs to the caller.
func (s *PGStore) Close() error { return nil }

var _ Store = (*PGStore)(nil)
