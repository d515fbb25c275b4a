package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okaneo/jobscout/internal/model"
)

const redisKeyPrefix = "seen:"

// RedisStore persists seen records as Redis hashes, one hash per identity
// key. first_seen is written with HSetNX so reruns never move it.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (model.SeenRecord, bool, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return model.SeenRecord{}, false, fmt.Errorf("reading record for %s: %w", key, err)
	}
	if len(fields) == 0 {
		return model.SeenRecord{}, false, nil
	}

	rec := model.SeenRecord{
		Key: key,
		Snapshot: model.Posting{
			Company:     fields["company"],
			Title:       fields["title"],
			Location:    fields["location"],
			URL:         fields["url"],
			Description: fields["description"],
			Source:      fields["source"],
		},
	}
	if rec.FirstSeen, err = time.Parse(time.RFC3339, fields["first_seen"]); err != nil {
		return model.SeenRecord{}, false, fmt.Errorf("parsing first_seen for %s: %w", key, err)
	}
	if rec.LastSeen, err = time.Parse(time.RFC3339, fields["last_seen"]); err != nil {
		return model.SeenRecord{}, false, fmt.Errorf("parsing last_seen for %s: %w", key, err)
	}
	if raw := fields["posted_at"]; raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return model.SeenRecord{}, false, fmt.Errorf("parsing posted_at for %s: %w", key, err)
		}
		rec.Snapshot.PostedAt = &t
	}
	return rec, true, nil
}

func (s *RedisStore) Upsert(ctx context.Context, key string, snapshot model.Posting, seenAt time.Time) error {
	hashKey := redisKeyPrefix + key
	stamp := seenAt.UTC().Format(time.RFC3339)

	fields := map[string]any{
		"last_seen":   stamp,
		"company":     snapshot.Company,
		"title":       snapshot.Title,
		"location":    snapshot.Location,
		"url":         snapshot.URL,
		"description": snapshot.Description,
		"source":      snapshot.Source,
	}
	if snapshot.PostedAt != nil {
		fields["posted_at"] = snapshot.PostedAt.UTC().Format(time.RFC3339)
	}

	pipe := s.client.TxPipeline()
	pipe.HSetNX(ctx, hashKey, "first_seen", stamp)
	pipe.HSet(ctx, hashKey, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("upserting record for %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	var count int
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
