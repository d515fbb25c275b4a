package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okaneo/jobscout/internal/model"
)

// PostgresStore persists seen records in Postgres via a pgx connection pool.
// Suitable when several machines share one history.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL, verifies connectivity, and
// ensures the seen_postings table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		identity_key TEXT PRIMARY KEY,
		first_seen   TIMESTAMPTZ NOT NULL,
		last_seen    TIMESTAMPTZ NOT NULL,
		company      TEXT,
		title        TEXT,
		location     TEXT,
		url          TEXT,
		description  TEXT,
		posted_at    TIMESTAMPTZ,
		source       TEXT
	)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (model.SeenRecord, bool, error) {
	var rec model.SeenRecord
	var postedAt *time.Time
	err := s.pool.QueryRow(ctx, `SELECT identity_key, first_seen, last_seen,
		company, title, location, url, description, posted_at, source
		FROM seen_postings WHERE identity_key = $1`, key).Scan(
		&rec.Key, &rec.FirstSeen, &rec.LastSeen,
		&rec.Snapshot.Company, &rec.Snapshot.Title, &rec.Snapshot.Location,
		&rec.Snapshot.URL, &rec.Snapshot.Description, &postedAt, &rec.Snapshot.Source)
	if err == pgx.ErrNoRows {
		return model.SeenRecord{}, false, nil
	}
	if err != nil {
		return model.SeenRecord{}, false, fmt.Errorf("reading record for %s: %w", key, err)
	}
	rec.Snapshot.PostedAt = postedAt
	return rec, true, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, key string, snapshot model.Posting, seenAt time.Time) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO seen_postings
		(identity_key, first_seen, last_seen, company, title, location, url, description, posted_at, source)
		VALUES ($1, $2, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (identity_key) DO UPDATE SET
			last_seen   = excluded.last_seen,
			company     = excluded.company,
			title       = excluded.title,
			location    = excluded.location,
			url         = excluded.url,
			description = excluded.description,
			posted_at   = excluded.posted_at,
			source      = excluded.source`,
		key, seenAt.UTC(), snapshot.Company, snapshot.Title, snapshot.Location,
		snapshot.URL, snapshot.Description, snapshot.PostedAt, snapshot.Source)
	if err != nil {
		return fmt.Errorf("upserting record for %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM seen_postings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
