// Package store holds the connection to redis, which backs rate limiting
// and IP blocks. Registry data is never stored locally.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eldtechnologies/agentindex/internal/metrics"
)

// RedisStore wraps the redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Client returns the underlying client, or nil for a nil store.
func (s *RedisStore) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.client.Ping(ctx).Err()
	metrics.RedisLatency.Observe(time.Since(start).Seconds())
	return err
}
