// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitesnap/sitesnap/internal/crawler"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RecordStore persists page records to a pages table, mirroring the
// one-row-per-record shape of the filesystem store.
type RecordStore struct {
	db   DB
	pool *pgxpool.Pool
}

var _ crawler.RecordSink = (*RecordStore)(nil)

// New connects a RecordStore to the given DSN.
func New(ctx context.Context, dsn string) (*RecordStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return &RecordStore{db: pool, pool: pool}, nil
}

// NewWithDB wraps an existing connection; used by tests.
func NewWithDB(db DB) *RecordStore {
	return &RecordStore{db: db}
}

// Close releases the underlying connection pool.
func (s *RecordStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Save inserts one record and returns its generated id.
func (s *RecordStore) Save(ctx context.Context, record crawler.PageRecord) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO pages (id, url, title, description, content, links, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := s.db.Exec(ctx, query,
		id,
		record.URL,
		record.Title,
		record.Description,
		record.Content,
		record.Links,
		record.FetchedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert page record: %w", err)
	}
	return id, nil
}
