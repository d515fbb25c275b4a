package model

import (
	"context"
	"time"
)

// Posting is the canonical representation of one job listing, regardless of
// which platform it came from.
type Posting struct {
	Company     string     // company name
	Title       string     // job title
	Location    string     // location string
	URL         string     // direct link to the posting
	Description string     // short description or snippet
	PostedAt    *time.Time // nullable (not all sources provide this)
	Source      string     // platform tag (greenhouse, lever, html, ...)
}

// Valid reports whether the posting carries enough identity to be useful.
// A posting missing both company and title is dropped at the extractor
// boundary and never enters the pipeline.
func (p Posting) Valid() bool {
	return p.Company != "" || p.Title != ""
}

// SeenRecord is the persisted history entry for one identity key.
type SeenRecord struct {
	Key       string
	FirstSeen time.Time
	LastSeen  time.Time
	Snapshot  Posting // latest field values observed for this key
}

// SeenStore persists seen records across runs. It is the only shared mutable
// state in the system; implementations must serialize upserts per key.
type SeenStore interface {
	Get(ctx context.Context, key string) (SeenRecord, bool, error)
	Upsert(ctx context.Context, key string, snapshot Posting, seenAt time.Time) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Notifier sends alerts for new postings.
type Notifier interface {
	Notify(postings []Posting) error
}

// Normalizer canonicalizes field representations across sources. It must be
// order-preserving; the pipeline stays correct when it is a no-op.
type Normalizer interface {
	Normalize(ctx context.Context, postings []Posting) ([]Posting, error)
}

// HTMLExtractor turns free-form career-page text into postings. Failure must
// be distinguishable from "zero postings found": an error means the service
// failed, an empty slice means the page had nothing to extract.
type HTMLExtractor interface {
	ExtractPostings(ctx context.Context, text string, company string) ([]Posting, error)
}
