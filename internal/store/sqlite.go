package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okaneo/jobscout/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists seen records in a SQLite database. This is the
// default backend: a single file, no server to run.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the seen_postings table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS seen_postings (
		identity_key TEXT PRIMARY KEY,
		first_seen   DATETIME NOT NULL,
		last_seen    DATETIME NOT NULL,
		company      TEXT,
		title        TEXT,
		location     TEXT,
		url          TEXT,
		description  TEXT,
		posted_at    DATETIME,
		source       TEXT
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating seen_postings table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the record for key, if any.
func (s *SQLiteStore) Get(ctx context.Context, key string) (model.SeenRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT identity_key, first_seen, last_seen,
		company, title, location, url, description, posted_at, source
		FROM seen_postings WHERE identity_key = ?`, key)

	var rec model.SeenRecord
	var postedAt sql.NullTime
	err := row.Scan(&rec.Key, &rec.FirstSeen, &rec.LastSeen,
		&rec.Snapshot.Company, &rec.Snapshot.Title, &rec.Snapshot.Location,
		&rec.Snapshot.URL, &rec.Snapshot.Description, &postedAt, &rec.Snapshot.Source)
	if err == sql.ErrNoRows {
		return model.SeenRecord{}, false, nil
	}
	if err != nil {
		return model.SeenRecord{}, false, fmt.Errorf("reading record for %s: %w", key, err)
	}
	if postedAt.Valid {
		t := postedAt.Time
		rec.Snapshot.PostedAt = &t
	}
	return rec, true, nil
}

// Upsert inserts a new record or refreshes an existing one. first_seen is
// written once and never changes afterwards.
func (s *SQLiteStore) Upsert(ctx context.Context, key string, snapshot model.Posting, seenAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO seen_postings
		(identity_key, first_seen, last_seen, company, title, location, url, description, posted_at, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identity_key) DO UPDATE SET
			last_seen   = excluded.last_seen,
			company     = excluded.company,
			title       = excluded.title,
			location    = excluded.location,
			url         = excluded.url,
			description = excluded.description,
			posted_at   = excluded.posted_at,
			source      = excluded.source`,
		key, seenAt.UTC(), seenAt.UTC(), snapshot.Company, snapshot.Title,
		snapshot.Location, snapshot.URL, snapshot.Description,
		nullableTime(snapshot.PostedAt), snapshot.Source)
	if err != nil {
		return fmt.Errorf("upserting record for %s: %w", key, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seen_postings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
