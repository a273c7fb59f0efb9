package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pacscope/pacscope/pkg/snapshot"
)

// latestKey holds the most recent snapshot. Redis keeps only the latest
// per deployment; use the Mongo backend for history.
const latestKey = "pacscope:latest"

// RedisStore publishes the latest snapshot to Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using a URL of the form
// redis://[user:pass@]host:port/db and verifies the connection.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Save stores the snapshot under the latest key, replacing any previous
// snapshot. Snapshots do not expire: the latest state stays available
// until the next collection run replaces it.
func (r *RedisStore) Save(ctx context.Context, s *snapshot.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.client.Set(ctx, latestKey, data, 0).Err()
}

// Latest fetches the stored snapshot, or ErrNoSnapshot when the key is
// absent.
func (r *RedisStore) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	data, err := r.client.Get(ctx, latestKey).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	var s snapshot.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// Get returns the stored snapshot when its ID matches. The backend holds
// only the latest snapshot, so any other ID is ErrNoSnapshot.
func (r *RedisStore) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	s, err := r.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if s.ID != id {
		return nil, ErrNoSnapshot
	}
	return s, nil
}

// List returns the single stored snapshot's summary, if any.
func (r *RedisStore) List(ctx context.Context) ([]Meta, error) {
	s, err := r.Latest(ctx)
	if err == ErrNoSnapshot {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []Meta{metaOf(s)}, nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close(context.Context) error {
	return r.client.Close()
}
